// Command smoke_check probes a running StudyDesk API. It checks that each
// read endpoint answers with the JSON envelope and that the dashboard figures
// agree with averages recomputed from the course and grade listings.
package main

import (
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"log"
	"math"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/noah-isme/studydesk-api/internal/academics"
	"github.com/noah-isme/studydesk-api/internal/dto"
	"github.com/noah-isme/studydesk-api/internal/models"
)

type probe struct {
	Path     string
	Status   int
	Critical bool
}

var probes = []probe{
	{Path: "/courses", Status: http.StatusOK, Critical: true},
	{Path: "/assignments", Status: http.StatusOK, Critical: true},
	{Path: "/assignments/grouped", Status: http.StatusOK, Critical: true},
	{Path: "/assignments/counts", Status: http.StatusOK},
	{Path: "/assignments?filter=bogus", Status: http.StatusBadRequest},
	{Path: "/grades", Status: http.StatusOK, Critical: true},
	{Path: "/students?limit=5", Status: http.StatusOK},
	{Path: "/dashboard", Status: http.StatusOK, Critical: true},
	{Path: "/courses/0", Status: http.StatusBadRequest},
}

type result struct {
	probe    probe
	status   int
	duration time.Duration
	err      error
}

type envelope struct {
	Data  json.RawMessage `json:"data"`
	Error *struct {
		Code string `json:"code"`
	} `json:"error"`
}

func main() {
	var (
		base    string
		timeout time.Duration
	)
	flag.StringVar(&base, "base", "http://localhost:8080/api/v1", "API base URL including the prefix")
	flag.DurationVar(&timeout, "timeout", 5*time.Second, "HTTP client timeout")
	flag.Parse()

	client := &http.Client{Timeout: timeout}
	base = strings.TrimRight(base, "/")

	var failures int
	for _, p := range probes {
		res := run(client, base, p)
		printResult(res)
		if res.err != nil && p.Critical {
			failures++
		}
	}

	if err := checkDashboard(client, base); err != nil {
		fmt.Printf("[FAIL] dashboard consistency: %v\n", err)
		failures++
	} else {
		fmt.Println("[OK] dashboard consistency")
	}

	if failures > 0 {
		log.Printf("%d critical check(s) failed", failures)
		os.Exit(1)
	}
}

func run(client *http.Client, base string, p probe) result {
	res := result{probe: p}
	start := time.Now()
	resp, err := client.Get(base + p.Path)
	res.duration = time.Since(start)
	if err != nil {
		res.err = err
		return res
	}
	defer resp.Body.Close()
	res.status = resp.StatusCode

	var env envelope
	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil {
		res.err = fmt.Errorf("decode envelope: %w", err)
		return res
	}
	switch {
	case resp.StatusCode != p.Status:
		res.err = fmt.Errorf("want status %d", p.Status)
	case resp.StatusCode >= 400 && env.Error == nil:
		res.err = errors.New("error response without error body")
	case resp.StatusCode < 400 && len(env.Data) == 0:
		res.err = errors.New("success response without data")
	}
	return res
}

func fetch(client *http.Client, url string, dest interface{}) error {
	resp, err := client.Get(url)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("GET %s: status %d", url, resp.StatusCode)
	}
	var env envelope
	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil {
		return fmt.Errorf("decode %s: %w", url, err)
	}
	return json.Unmarshal(env.Data, dest)
}

// checkDashboard recomputes the overall average from the raw listings.
// A write landing between the requests can cause a false mismatch.
func checkDashboard(client *http.Client, base string) error {
	var (
		courses []models.Course
		grades  []dto.GradeItem
		summary dto.DashboardSummary
	)
	if err := fetch(client, base+"/courses", &courses); err != nil {
		return err
	}
	if err := fetch(client, base+"/grades", &grades); err != nil {
		return err
	}
	if err := fetch(client, base+"/dashboard", &summary); err != nil {
		return err
	}

	if summary.ActiveCourses != len(courses) {
		return fmt.Errorf("active courses %d, listing has %d", summary.ActiveCourses, len(courses))
	}

	raw := make([]models.Grade, 0, len(grades))
	for _, item := range grades {
		raw = append(raw, item.Grade)
	}
	want := academics.OverallAverage(courses, raw)
	got := summary.OverallAverage
	switch {
	case want == nil && got == nil:
		return nil
	case want == nil || got == nil:
		return fmt.Errorf("overall average presence differs: dashboard %v, recomputed %v", got, want)
	case math.Abs(*want-*got) > 1e-6:
		return fmt.Errorf("overall average %.4f, recomputed %.4f", *got, *want)
	}
	return nil
}

func printResult(res result) {
	state := "OK"
	if res.err != nil {
		state = "FAIL"
		if !res.probe.Critical {
			state = "WARN"
		}
	}
	fmt.Printf("[%s] GET %s -> %d (%s)\n", state, res.probe.Path, res.status, res.duration.Round(time.Millisecond))
	if res.err != nil {
		fmt.Printf("  %v\n", res.err)
	}
}
