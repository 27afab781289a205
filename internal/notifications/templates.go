package notifications

import (
	"fmt"
	"strings"

	"github.com/devops863/kaizen-sourcing/internal/models"
)

const (
	emailSubject = "Application Submitted"
	emailBody    = "Hello {{firstName}}, we've received your application for the {{jobTitle}} role with {{agencyCompany}} (reference {{applicationId}}). We will be in touch shortly."
	smsBody      = "{{agencyCompany}}: thanks {{firstName}}, we've received your application (ref {{applicationId}}) and will be in touch shortly."
)

func templateData(app *models.Application) map[string]interface{} {
	company := app.AgencyCompany
	if company == "" {
		company = models.DefaultAgencyCompany
	}
	return map[string]interface{}{
		"applicationId": app.ID,
		"firstName":     app.FirstName,
		"jobTitle":      app.JobTitle,
		"agencyCompany": company,
	}
}

// renderTemplate substitutes {{key}} placeholders and drops any left unresolved.
func renderTemplate(tmpl string, data map[string]interface{}) string {
	result := tmpl
	for k, v := range data {
		value := ""
		if v != nil {
			value = fmt.Sprintf("%v", v)
		}
		result = strings.ReplaceAll(result, "{{"+k+"}}", value)
	}

	for {
		start := strings.Index(result, "{{")
		if start == -1 {
			break
		}
		end := strings.Index(result[start:], "}}")
		if end == -1 {
			break
		}
		result = result[:start] + result[start+end+2:]
	}

	return result
}
