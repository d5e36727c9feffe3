package openapi

import (
	"github.com/getkin/kin-openapi/openapi3"
	"github.com/triologic/medrec/config"
)

func op(tag, summary string) *openapi3.Operation {
	operation := openapi3.NewOperation()
	operation.Tags = []string{tag}
	operation.Summary = summary
	operation.Responses = openapi3.NewResponses()
	return operation
}

func withIDParam(operation *openapi3.Operation) *openapi3.Operation {
	operation.Parameters = append(operation.Parameters, &openapi3.ParameterRef{
		Value: &openapi3.Parameter{
			Name:     "id",
			In:       "path",
			Required: true,
			Schema:   &openapi3.SchemaRef{Value: &openapi3.Schema{Type: &openapi3.Types{"string"}}},
		},
	})
	return operation
}

// BuildDocument describes the HTTP surface as an OpenAPI 3 document.
func BuildDocument(cfg *config.Config) *openapi3.T {
	doc := &openapi3.T{
		OpenAPI: "3.0.3",
		Info: &openapi3.Info{
			Title:       cfg.App.Name,
			Version:     "1.0.0",
			Description: "Doctor accounts, staged patient intake and ownership-scoped clinical records.",
		},
		Paths: openapi3.NewPaths(),
		Servers: openapi3.Servers{
			&openapi3.Server{URL: cfg.App.URL},
		},
		Tags: openapi3.Tags{
			&openapi3.Tag{Name: "auth", Description: "Account registration, verification and sessions"},
			&openapi3.Tag{Name: "patients", Description: "Patient aggregates and clinical records"},
			&openapi3.Tag{Name: "intake", Description: "Staged patient intake wizard"},
			&openapi3.Tag{Name: "appointments", Description: "Appointment scheduling"},
			&openapi3.Tag{Name: "tasks", Description: "Doctor task list"},
			&openapi3.Tag{Name: "reports", Description: "Panel reports"},
			&openapi3.Tag{Name: "settings", Description: "Profile, password and active sessions"},
		},
	}

	type route struct {
		path      string
		method    string
		operation *openapi3.Operation
	}

	routes := []route{
		{"/api/signup", "POST", op("auth", "Register a doctor account")},
		{"/api/login", "POST", op("auth", "Log in with username and password")},
		{"/api/logout", "POST", op("auth", "End the current session")},
		{"/api/verify-code", "POST", op("auth", "Verify the emailed 6-digit code")},
		{"/api/resend-code", "POST", op("auth", "Resend the verification code")},
		{"/api/forgot-password", "POST", op("auth", "Request a password reset link")},
		{"/api/reset-password", "POST", op("auth", "Reset the password with a token")},
		{"/api/me", "GET", op("auth", "Current doctor profile")},

		{"/api/patients", "GET", op("patients", "List recent patients")},
		{"/api/patients", "POST", op("patients", "Create a patient aggregate")},
		{"/api/patients/names", "GET", op("patients", "Patient names for pickers")},
		{"/api/patients/{id}", "GET", withIDParam(op("patients", "Patient details"))},
		{"/api/patients/{id}", "POST", withIDParam(op("patients", "Update demographics"))},
		{"/api/patients/{id}/delete", "POST", withIDParam(op("patients", "Delete the patient and all records"))},
		{"/api/patients/{id}/billing", "POST", withIDParam(op("patients", "Save billing details"))},
		{"/api/patients/{id}/scans", "POST", withIDParam(op("patients", "Upload a scan"))},
		{"/api/patients/{id}/vitals", "POST", withIDParam(op("patients", "Record vital signs"))},
		{"/api/patients/{id}/prescriptions", "POST", withIDParam(op("patients", "Record a prescription"))},
		{"/api/patients/{id}/notes", "POST", withIDParam(op("patients", "Record a clinical note"))},
		{"/api/patients/{id}/records", "GET", withIDParam(op("patients", "Clinical record history"))},

		{"/api/intake/draft", "GET", op("intake", "Current draft and staged scans")},
		{"/api/intake/personal", "POST", op("intake", "Save the personal information step")},
		{"/api/intake/history", "POST", op("intake", "Save the medical history step")},
		{"/api/intake/contact", "POST", op("intake", "Save the emergency contact step")},
		{"/api/intake/scans", "POST", op("intake", "Stage a scan attachment")},
		{"/api/intake/scans/{id}/remove", "POST", withIDParam(op("intake", "Remove a staged scan"))},
		{"/api/intake/clear", "POST", op("intake", "Discard the draft")},
		{"/api/intake/submit", "POST", op("intake", "Commit the staged intake")},

		{"/api/appointments", "GET", op("appointments", "List appointments")},
		{"/api/appointments", "POST", op("appointments", "Create or update an appointment")},

		{"/api/tasks", "GET", op("tasks", "List tasks")},
		{"/api/tasks", "POST", op("tasks", "Create or update a task")},
		{"/api/tasks/{id}/status", "POST", withIDParam(op("tasks", "Update a task's status"))},

		{"/api/reports", "GET", op("reports", "Panel summary report")},

		{"/api/profile", "POST", op("settings", "Update the profile")},
		{"/api/password", "POST", op("settings", "Change the password")},
		{"/api/sessions", "GET", op("settings", "List active sessions")},
		{"/api/sessions/{id}/revoke", "POST", withIDParam(op("settings", "Revoke a session"))},
	}

	for _, r := range routes {
		item := doc.Paths.Value(r.path)
		if item == nil {
			item = &openapi3.PathItem{}
			doc.Paths.Set(r.path, item)
		}
		item.SetOperation(r.method, r.operation)
	}

	return doc
}
