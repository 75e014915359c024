package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/spf13/pflag"
)

type slot struct {
	Time      string `json:"time"`
	Available bool   `json:"available"`
	Reason    string `json:"reason,omitempty"`
}

type dayResult struct {
	AvailableCount int    `json:"availableCount"`
	TotalSlots     int    `json:"totalSlots"`
	Slots          []slot `json:"slots"`
	Error          bool   `json:"error"`
	ErrorMessage   string `json:"errorMessage"`
}

type singleEnvelope struct {
	Data struct {
		Slots   []slot `json:"slots"`
		Summary struct {
			AvailableCount int `json:"availableCount"`
			TotalSlots     int `json:"totalSlots"`
		} `json:"summary"`
	} `json:"data"`
}

type batchEnvelope struct {
	Data struct {
		Availability map[string]dayResult `json:"availability"`
	} `json:"data"`
}

type mismatch struct {
	Date   string
	Detail string
}

func main() {
	var (
		base    string
		barber  string
		from    string
		days    int
		timeout time.Duration
	)
	pflag.StringVar(&base, "base", "http://localhost:8080/api/v1", "API base URL including the prefix")
	pflag.StringVar(&barber, "barber", "", "barber id to probe")
	pflag.StringVar(&from, "from", time.Now().Format("2006-01-02"), "first date (YYYY-MM-DD)")
	pflag.IntVar(&days, "days", 14, "number of dates to compare")
	pflag.DurationVar(&timeout, "timeout", 5*time.Second, "HTTP client timeout")
	pflag.Parse()

	if barber == "" {
		log.Fatal("--barber is required")
	}
	dates, err := dateRange(from, days)
	if err != nil {
		log.Fatalf("invalid horizon: %v", err)
	}

	client := &http.Client{Timeout: timeout}
	batch, err := fetchBatch(client, base, barber, dates)
	if err != nil {
		log.Fatalf("batch request failed: %v", err)
	}

	var mismatches []mismatch
	for _, date := range dates {
		single, err := fetchSingle(client, base, barber, date)
		if err != nil {
			mismatches = append(mismatches, mismatch{Date: date, Detail: fmt.Sprintf("single request failed: %v", err)})
			continue
		}
		day, ok := batch[date]
		if !ok {
			mismatches = append(mismatches, mismatch{Date: date, Detail: "missing from batch response"})
			continue
		}
		mismatches = append(mismatches, compareDay(date, single, day)...)
	}

	for _, m := range mismatches {
		fmt.Printf("%s  %s\n", m.Date, m.Detail)
	}
	fmt.Printf("Dates compared: %d, mismatches: %d\n", len(dates), len(mismatches))
	if len(mismatches) > 0 {
		os.Exit(1)
	}
}

func dateRange(from string, days int) ([]string, error) {
	start, err := time.Parse("2006-01-02", from)
	if err != nil {
		return nil, err
	}
	if days <= 0 {
		return nil, fmt.Errorf("days must be positive")
	}
	out := make([]string, 0, days)
	for i := 0; i < days; i++ {
		out = append(out, start.AddDate(0, 0, i).Format("2006-01-02"))
	}
	return out, nil
}

func fetchSingle(client *http.Client, base, barber, date string) (singleEnvelope, error) {
	var env singleEnvelope
	endpoint := fmt.Sprintf("%s/barbers/%s/slots?date=%s", strings.TrimRight(base, "/"), url.PathEscape(barber), url.QueryEscape(date))
	resp, err := client.Get(endpoint)
	if err != nil {
		return env, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return env, fmt.Errorf("status %d", resp.StatusCode)
	}
	return env, json.NewDecoder(resp.Body).Decode(&env)
}

func fetchBatch(client *http.Client, base, barber string, dates []string) (map[string]dayResult, error) {
	payload, err := json.Marshal(map[string]interface{}{"barberId": barber, "dates": dates})
	if err != nil {
		return nil, err
	}
	resp, err := client.Post(strings.TrimRight(base, "/")+"/availability/batch", "application/json", bytes.NewReader(payload))
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("status %d", resp.StatusCode)
	}
	var env batchEnvelope
	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil {
		return nil, err
	}
	return env.Data.Availability, nil
}

func compareDay(date string, single singleEnvelope, day dayResult) []mismatch {
	if day.Error {
		return []mismatch{{Date: date, Detail: "batch reported error: " + day.ErrorMessage}}
	}
	var out []mismatch
	if single.Data.Summary.AvailableCount != day.AvailableCount || single.Data.Summary.TotalSlots != day.TotalSlots {
		out = append(out, mismatch{Date: date, Detail: fmt.Sprintf("summary single=%d/%d batch=%d/%d",
			single.Data.Summary.AvailableCount, single.Data.Summary.TotalSlots, day.AvailableCount, day.TotalSlots)})
	}
	batchSlots := make(map[string]slot, len(day.Slots))
	for _, s := range day.Slots {
		batchSlots[s.Time] = s
	}
	for _, s := range single.Data.Slots {
		other, ok := batchSlots[s.Time]
		switch {
		case !ok:
			out = append(out, mismatch{Date: date, Detail: s.Time + " missing from batch"})
		case other != s:
			out = append(out, mismatch{Date: date, Detail: fmt.Sprintf("%s single=%v(%s) batch=%v(%s)", s.Time, s.Available, s.Reason, other.Available, other.Reason)})
		}
		delete(batchSlots, s.Time)
	}
	for t := range batchSlots {
		out = append(out, mismatch{Date: date, Detail: t + " missing from single"})
	}
	return out
}
