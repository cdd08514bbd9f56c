// Command seed_demo populates a running API instance with a demo catalog:
// rooms, courses, a draft schedule, and full-week availability for the
// given instructors. Intended for local environments and demos only.
package main

import (
	"bytes"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"net/http"
	"strings"
	"time"
)

type envelope struct {
	Data  json.RawMessage `json:"data"`
	Error *struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

type client struct {
	base  string
	token string
	http  *http.Client
}

func main() {
	var (
		base        string
		email       string
		password    string
		semester    string
		instructors string
		timeout     time.Duration
	)

	flag.StringVar(&base, "base", "http://localhost:8080/api/v1", "API base URL")
	flag.StringVar(&email, "email", "admin@example.edu", "login email (ADMIN or COORDINATOR)")
	flag.StringVar(&password, "password", "admin123", "login password")
	flag.StringVar(&semester, "semester", "2026-II", "semester label for the demo schedule")
	flag.StringVar(&instructors, "instructors", "", "comma-separated instructor IDs to open MON-FRI 08:00-18:00")
	flag.DurationVar(&timeout, "timeout", 10*time.Second, "HTTP client timeout")
	flag.Parse()

	c := &client{base: strings.TrimRight(base, "/"), http: &http.Client{Timeout: timeout}}
	if err := c.login(email, password); err != nil {
		log.Fatalf("login failed: %v", err)
	}
	log.Printf("authenticated as %s", email)

	rooms := []map[string]interface{}{
		{"name": "A-101", "capacity": 60, "category": "NORMAL", "building": "A", "floor": "1", "has_projector": true},
		{"name": "A-102", "capacity": 40, "category": "NORMAL", "building": "A", "floor": "1", "has_projector": true},
		{"name": "B-201", "capacity": 120, "category": "NORMAL", "building": "B", "floor": "2", "has_projector": false},
		{"name": "LAB-1", "capacity": 30, "category": "LAB", "building": "C", "floor": "1", "has_projector": true, "has_computers": true},
		{"name": "LAB-2", "capacity": 25, "category": "LAB", "building": "C", "floor": "1", "has_projector": true, "has_computers": true},
	}
	for _, room := range rooms {
		if err := c.post("/rooms", room, nil); err != nil {
			log.Fatalf("create room %v: %v", room["name"], err)
		}
	}
	log.Printf("created %d rooms", len(rooms))

	courses := []map[string]interface{}{
		{"code": "MAT101", "name": "Calculus I", "credits": 4, "type": "MANDATORY", "sessions_per_week": 3, "session_duration": 2, "estimated_capacity": 50},
		{"code": "FIS102", "name": "Physics I", "credits": 4, "type": "MANDATORY", "sessions_per_week": 2, "session_duration": 2, "estimated_capacity": 45},
		{"code": "INF103", "name": "Programming Fundamentals", "credits": 3, "type": "MANDATORY", "sessions_per_week": 2, "session_duration": 2, "estimated_capacity": 28, "required_equipment": "computer lab with workstations"},
		{"code": "HUM104", "name": "Academic Writing", "credits": 2, "type": "ELECTIVE", "sessions_per_week": 1, "session_duration": 2, "estimated_capacity": 100},
	}
	for _, course := range courses {
		if err := c.post("/courses", course, nil); err != nil {
			log.Fatalf("create course %v: %v", course["code"], err)
		}
	}
	log.Printf("created %d courses", len(courses))

	var schedule struct {
		ID string `json:"id"`
	}
	payload := map[string]interface{}{
		"name":     fmt.Sprintf("Demo timetable %s", semester),
		"semester": semester,
	}
	if err := c.post("/schedules", payload, &schedule); err != nil {
		log.Fatalf("create schedule: %v", err)
	}
	log.Printf("created schedule %s", schedule.ID)

	days := []string{"MONDAY", "TUESDAY", "WEDNESDAY", "THURSDAY", "FRIDAY"}
	for _, id := range splitIDs(instructors) {
		for _, day := range days {
			body := map[string]interface{}{
				"instructor_id": id,
				"day_of_week":   day,
				"windows": []map[string]string{
					{"start_time": "08:00", "end_time": "18:00", "kind": "AVAILABLE"},
				},
			}
			if err := c.put("/availability/bulk", body, nil); err != nil {
				log.Fatalf("availability for %s on %s: %v", id, day, err)
			}
		}
		log.Printf("opened full week for instructor %s", id)
	}

	log.Printf("done; run POST %s/schedules/%s/generate to build the timetable", c.base, schedule.ID)
}

func (c *client) login(email, password string) error {
	var res struct {
		AccessToken string `json:"access_token"`
	}
	if err := c.post("/auth/login", map[string]string{"email": email, "password": password}, &res); err != nil {
		return err
	}
	if res.AccessToken == "" {
		return fmt.Errorf("empty access token")
	}
	c.token = res.AccessToken
	return nil
}

func (c *client) post(path string, body interface{}, out interface{}) error {
	return c.send(http.MethodPost, path, body, out)
}

func (c *client) put(path string, body interface{}, out interface{}) error {
	return c.send(http.MethodPut, path, body, out)
}

func (c *client) send(method, path string, body interface{}, out interface{}) error {
	raw, err := json.Marshal(body)
	if err != nil {
		return err
	}
	req, err := http.NewRequest(method, c.base+path, bytes.NewReader(raw))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	var env envelope
	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil {
		return fmt.Errorf("decode response (%d): %w", resp.StatusCode, err)
	}
	if env.Error != nil {
		return fmt.Errorf("%s: %s (%d)", env.Error.Code, env.Error.Message, resp.StatusCode)
	}
	if resp.StatusCode >= 300 {
		return fmt.Errorf("unexpected status %d", resp.StatusCode)
	}
	if out != nil && len(env.Data) > 0 {
		return json.Unmarshal(env.Data, out)
	}
	return nil
}

func splitIDs(raw string) []string {
	if strings.TrimSpace(raw) == "" {
		return nil
	}
	parts := strings.Split(raw, ",")
	ids := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			ids = append(ids, trimmed)
		}
	}
	return ids
}
