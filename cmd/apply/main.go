// cmd/apply/main.go
package main

import (
	"bufio"
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/fatih/color"

	"github.com/devops863/kaizen-sourcing/internal/client"
	"github.com/devops863/kaizen-sourcing/internal/common/config"
	"github.com/devops863/kaizen-sourcing/internal/form"
)

// clearInput resets a field to its empty value; a blank answer keeps the current one.
const clearInput = "-"

type wizard struct {
	machine *form.Machine
	scanner *bufio.Scanner
}

func main() {
	apiURL := flag.String("api", "", "Base URL of the application API (defaults to client.base_url from config)")
	remoteSchema := flag.Bool("remote-schema", false, "Validate against the schema served by the API instead of the built-in one")
	flag.Parse()

	baseURL, timeout := clientSettings(*apiURL)
	api := client.New(baseURL, timeout)

	var opts []form.Option
	if *remoteSchema {
		contract, err := api.Contract(context.Background())
		if err != nil {
			color.Red("Could not load the application schema: %v", err)
			os.Exit(1)
		}
		opts = append(opts, form.WithContract(contract))
	}

	w := &wizard{
		machine: form.NewMachine(api, opts...),
		scanner: bufio.NewScanner(os.Stdin),
	}
	w.machine.Subscribe(w.onEvent)

	color.Cyan("\n=== Kaizen Sourcing Job Application ===")
	if err := w.run(); err != nil {
		color.Red("%v", err)
		os.Exit(1)
	}
}

func clientSettings(override string) (string, time.Duration) {
	baseURL, timeout := "http://localhost:8080", 30*time.Second
	if cfg, err := config.Load(); err == nil {
		baseURL, timeout = cfg.Client.BaseURL, config.GetDuration(cfg.Client.Timeout)
	}
	if override != "" {
		baseURL = override
	}
	return baseURL, timeout
}

func (w *wizard) onEvent(ev form.Event) {
	switch ev.Kind {
	case form.EventScrollTop:
		fmt.Println()
	case form.EventSubmissionSucceeded:
		color.Green("%s: %s", ev.Title, ev.Message)
		if ev.Application != nil {
			fmt.Printf("Reference: %d\n", ev.Application.ID)
		}
	case form.EventSubmissionFailed:
		color.Red("%s: %s", ev.Title, ev.Message)
	}
}

func (w *wizard) run() error {
	for !w.machine.Submitted() {
		step := w.machine.CurrentStep()
		color.Yellow("Step %d of %d: %s", step.Number(), form.LastStep, step.Title())
		if intro := step.Intro(); intro != "" {
			fmt.Println(intro)
		}

		if review, ok := step.(form.ReviewStep); ok {
			w.printSummary(review)
		}
		for _, f := range step.Fields() {
			if err := w.prompt(f); err != nil {
				return err
			}
		}

		if step.Number() < form.LastStep {
			if err := w.navigate(); err != nil {
				return err
			}
			continue
		}
		if err := w.confirm(); err != nil {
			return err
		}
	}
	return nil
}

// navigate asks whether to continue or go back, then moves the machine.
func (w *wizard) navigate() error {
	answer, err := w.ask("[n]ext, [b]ack", "n")
	if err != nil {
		return err
	}
	if strings.HasPrefix(strings.ToLower(answer), "b") {
		return w.machine.Retreat()
	}

	var invalid *form.ClientValidationError
	if err := w.machine.Advance(); errors.As(err, &invalid) {
		w.printErrors()
	} else if err != nil {
		return err
	}
	return nil
}

func (w *wizard) confirm() error {
	answer, err := w.ask("[s]ubmit, [b]ack", "s")
	if err != nil {
		return err
	}
	if strings.HasPrefix(strings.ToLower(answer), "b") {
		return w.machine.Retreat()
	}

	_, err = w.machine.Submit(context.Background())
	var invalid *form.ClientValidationError
	var rejected *form.ServerValidationError
	var transport *form.TransportError
	switch {
	case err == nil:
		return nil
	case errors.As(err, &invalid), errors.As(err, &rejected):
		w.printErrors()
		return nil
	case errors.As(err, &transport):
		return nil
	default:
		return err
	}
}

func (w *wizard) prompt(f form.FieldDescriptor) error {
	if f.ReadOnly {
		fmt.Printf("%s: %v\n", f.Label, w.machine.Value(f.Name))
		return nil
	}

	for i, o := range f.Options {
		fmt.Printf("  %d) %s\n", i+1, o.Label)
	}
	current := displayCurrent(w.machine.Value(f.Name))
	label := f.Label
	if f.Placeholder != "" {
		label += " (" + f.Placeholder + ")"
	}
	if msg, ok := w.machine.Errors()[f.Name]; ok {
		color.Red("  %s", msg)
	}

	if current != "" {
		label += ", " + clearInput + " to clear"
	}

	raw, err := w.ask(label, current)
	if err != nil {
		return err
	}
	return w.machine.Set(f.Name, parseInput(f, raw))
}

func (w *wizard) ask(label, current string) (string, error) {
	if current != "" {
		fmt.Printf("%s [%s]: ", label, current)
	} else {
		fmt.Printf("%s: ", label)
	}
	if !w.scanner.Scan() {
		if err := w.scanner.Err(); err != nil {
			return "", err
		}
		return "", errors.New("input closed before the application was submitted")
	}
	answer := strings.TrimSpace(w.scanner.Text())
	if answer == "" {
		return current, nil
	}
	return answer, nil
}

func (w *wizard) printErrors() {
	for _, line := range errorLines(w.machine.Errors(), w.machine.Step()) {
		color.Red("  %s", line)
	}
}

// errorLines lists the current step's errors first, then those on other steps
// tagged with the step they belong to.
func errorLines(errs map[string]string, current int) []string {
	var lines []string
	for _, f := range form.StepFor(current).Fields() {
		if msg, ok := errs[f.Name]; ok {
			lines = append(lines, fmt.Sprintf("%s: %s", f.Label, msg))
		}
	}
	for _, step := range form.Steps() {
		if step.Number() == current {
			continue
		}
		for _, f := range step.Fields() {
			if msg, ok := errs[f.Name]; ok {
				lines = append(lines, fmt.Sprintf("%s (step %d, %s): %s", f.Label, step.Number(), step.Title(), msg))
			}
		}
	}
	return lines
}

func (w *wizard) printSummary(review form.ReviewStep) {
	section := ""
	for _, item := range review.Summary(w.machine.Values()) {
		if item.Step != section {
			section = item.Step
			color.Cyan("%s", section)
		}
		fmt.Printf("  %s: %s\n", item.Label, item.Value)
	}
}

func displayCurrent(v interface{}) string {
	switch val := v.(type) {
	case string:
		return val
	case bool:
		if val {
			return "y"
		}
		return "n"
	case []string:
		return strings.Join(val, ", ")
	default:
		return ""
	}
}

// parseInput converts a typed answer into the value type the field holds.
func parseInput(f form.FieldDescriptor, raw string) interface{} {
	if raw == clearInput {
		return f.Empty()
	}
	switch f.Kind {
	case form.KindCheckbox:
		switch strings.ToLower(raw) {
		case "y", "yes", "true":
			return true
		default:
			return false
		}
	case form.KindFiles:
		files := []string{}
		for _, part := range strings.Split(raw, ",") {
			if part = strings.TrimSpace(part); part != "" {
				files = append(files, part)
			}
		}
		return files
	case form.KindSelect:
		if n, err := strconv.Atoi(raw); err == nil && n >= 1 && n <= len(f.Options) {
			return f.Options[n-1].Value
		}
		return raw
	default:
		return raw
	}
}
