// cmd/tools/list-applications/main.go
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/fatih/color"
	"github.com/olekukonko/tablewriter"

	"github.com/devops863/kaizen-sourcing/internal/client"
	"github.com/devops863/kaizen-sourcing/internal/common/config"
)

func main() {
	apiURL := flag.String("api", "", "Base URL of the application API (defaults to client.base_url from config)")
	wide := flag.Bool("wide", false, "Include contact and employment details")
	flag.Parse()

	baseURL, timeout := "http://localhost:8080", 30*time.Second
	if cfg, err := config.Load(); err == nil {
		baseURL, timeout = cfg.Client.BaseURL, config.GetDuration(cfg.Client.Timeout)
	}
	if *apiURL != "" {
		baseURL = *apiURL
	}

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	apps, err := client.New(baseURL, timeout).ListApplications(ctx)
	if err != nil {
		color.Red("Failed to list applications: %v", err)
		os.Exit(1)
	}

	color.Yellow("\n%d application(s)", len(apps))
	if len(apps) == 0 {
		return
	}

	header := []string{"ID", "Name", "Job Title", "Start Date", "Submitted"}
	if *wide {
		header = append(header, "Email", "Contact", "Employee Type", "Marketing")
	}

	table := tablewriter.NewWriter(os.Stdout)
	table.SetHeader(header)
	for _, app := range apps {
		row := []string{
			fmt.Sprintf("%d", app.ID),
			app.FullName(),
			app.JobTitle,
			app.StartDate,
			app.CreatedAt.Local().Format("2006-01-02 15:04"),
		}
		if *wide {
			row = append(row, app.Email, app.ContactNumber, app.EmployeeType, fmt.Sprintf("%t", app.ConsentMarketing))
		}
		table.Append(row)
	}
	table.Render()
}
