package main

import (
	"bytes"
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"sort"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"
)

type allocation struct {
	StudentID   string `json:"studentId"`
	ClassroomID string `json:"classroomId"`
	Row         int    `json:"row"`
	Column      int    `json:"column"`
}

type outcome struct {
	StudentID string
	Status    int
	Code      string
	Duration  time.Duration
	Error     error
}

type report struct {
	Outcomes  []outcome
	Successes int
	ByCode    map[string]int
}

func main() {
	var (
		base      string
		prefix    string
		classroom string
		students  string
		row, col  int
		timeout   time.Duration
	)

	flag.StringVar(&base, "base", "http://localhost:8080", "seating API base URL")
	flag.StringVar(&prefix, "prefix", "/api/v1", "API prefix")
	flag.StringVar(&classroom, "classroom", "", "classroom ID")
	flag.StringVar(&students, "students", "", "comma separated student IDs racing for the seat")
	flag.IntVar(&row, "row", 0, "seat row")
	flag.IntVar(&col, "col", 0, "seat column")
	flag.DurationVar(&timeout, "timeout", 10*time.Second, "HTTP client timeout")
	flag.Parse()

	ids := splitIDs(students)
	if classroom == "" || len(ids) < 2 {
		log.Fatal("need -classroom and at least two -students")
	}

	client := &http.Client{Timeout: timeout}
	url := strings.TrimRight(base, "/") + "/" + strings.Trim(prefix, "/") + "/allocations"
	rep := probe(context.Background(), client, url, classroom, row, col, ids)
	printReport(rep)

	if rep.Successes > 1 {
		os.Exit(1)
	}
}

func splitIDs(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if id := strings.TrimSpace(part); id != "" {
			out = append(out, id)
		}
	}
	return out
}

// probe releases every request at once and collects the outcome of each.
func probe(ctx context.Context, client *http.Client, url, classroom string, row, col int, students []string) report {
	outcomes := make([]outcome, len(students))
	start := make(chan struct{})
	var ready sync.WaitGroup
	ready.Add(len(students))

	g, gctx := errgroup.WithContext(ctx)
	for i, id := range students {
		i, id := i, id
		g.Go(func() error {
			ready.Done()
			<-start
			outcomes[i] = allocate(gctx, client, url, allocation{StudentID: id, ClassroomID: classroom, Row: row, Column: col})
			return nil
		})
	}
	ready.Wait()
	close(start)
	_ = g.Wait()

	rep := report{Outcomes: outcomes, ByCode: make(map[string]int)}
	for _, o := range outcomes {
		switch {
		case o.Error != nil:
			rep.ByCode["TRANSPORT_ERROR"]++
		case o.Status == http.StatusCreated:
			rep.Successes++
			rep.ByCode["COMMITTED"]++
		default:
			rep.ByCode[o.Code]++
		}
	}
	return rep
}

func allocate(ctx context.Context, client *http.Client, url string, payload allocation) outcome {
	out := outcome{StudentID: payload.StudentID}
	body, err := json.Marshal(payload)
	if err != nil {
		out.Error = err
		return out
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		out.Error = err
		return out
	}
	req.Header.Set("Content-Type", "application/json")

	started := time.Now()
	resp, err := client.Do(req)
	out.Duration = time.Since(started)
	if err != nil {
		out.Error = err
		return out
	}
	defer resp.Body.Close()
	out.Status = resp.StatusCode

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		out.Error = fmt.Errorf("read body: %w", err)
		return out
	}
	var envelope struct {
		Error *struct {
			Code string `json:"code"`
		} `json:"error"`
	}
	if json.Unmarshal(raw, &envelope) == nil && envelope.Error != nil {
		out.Code = envelope.Error.Code
	}
	return out
}

func printReport(rep report) {
	fmt.Println("Contention Probe Report")
	fmt.Println("=======================")
	for _, o := range rep.Outcomes {
		if o.Error != nil {
			fmt.Printf("[ERROR] %s: %v\n", o.StudentID, o.Error)
			continue
		}
		label := o.Code
		if label == "" {
			label = "COMMITTED"
		}
		fmt.Printf("[%d] %s %s (%s)\n", o.Status, o.StudentID, label, o.Duration)
	}

	codes := make([]string, 0, len(rep.ByCode))
	for code := range rep.ByCode {
		codes = append(codes, code)
	}
	sort.Strings(codes)
	fmt.Println()
	for _, code := range codes {
		fmt.Printf("%-20s %d\n", code, rep.ByCode[code])
	}
	fmt.Printf("Winners: %d\n", rep.Successes)
}
