package commands

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/benvon/smart-journal/internal/ledger"
	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"
)

const sampleYAML = `tasks:
  - owner: alice
    name: water plants
    due_date: "2024-03-01"
    due_time: "08:00"
    timezone: Europe/Berlin
    recurrence_rule: "RRULE:FREQ=DAILY"
    completed_slots: "20240302T080000"
    reminder_setting:
      overrides: [10, 45, 20]
  - owner: bob
    name: dentist
    due_date: "2024-03-02"
    due_time: "15:30"
    timezone: UTC
    reminder_setting:
      use_default: true
transactions:
  - owner: alice
    name: salary
    payer: acme
    amount: "3000"
    transaction_type: INCOME
    date: "2024-01-25"
    time: "09:00"
    timezone: UTC
    recurrence_rule: "DTSTART:20240125T090000Z RRULE:FREQ=MONTHLY"
  - owner: alice
    name: groceries
    payer: alice
    amount: 120.50
    transaction_type: EXPENSE
    labels: [food]
    date: "2024-02-03"
    time: "11:00"
    timezone: UTC
`

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
	return path
}

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := NewRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestExpandCommand(t *testing.T) {
	t.Parallel()
	path := writeFile(t, "templates.yaml", sampleYAML)

	out, err := run(t, "expand", "--file", path, "--start", "2024-03-01", "--end", "2024-03-03", "--timezone", "Europe/Berlin")
	if err != nil {
		t.Fatalf("expand: %v", err)
	}
	var got ExpandOutput
	if err := json.Unmarshal([]byte(out), &got); err != nil {
		t.Fatalf("decode output: %v\n%s", err, out)
	}

	var dates []string
	for _, task := range got.Tasks {
		dates = append(dates, task.Owner+" "+task.DueDate)
	}
	// Mar 2 is a completed slot of the daily task
	want := []string{"alice 2024-03-01", "alice 2024-03-03", "bob 2024-03-02"}
	if strings.Join(dates, ",") != strings.Join(want, ",") {
		t.Errorf("task occurrences = %v, want %v", dates, want)
	}
	if len(got.Transactions) != 0 {
		t.Errorf("got %d transactions, want 0", len(got.Transactions))
	}
}

func TestExpandCommand_YAMLOutput(t *testing.T) {
	t.Parallel()
	path := writeFile(t, "templates.yaml", sampleYAML)

	out, err := run(t, "expand", "-f", path, "--start", "2024-01-01", "--end", "2024-02-29", "-o", "yaml")
	if err != nil {
		t.Fatalf("expand: %v", err)
	}
	var doc map[string]any
	if err := yaml.Unmarshal([]byte(out), &doc); err != nil {
		t.Fatalf("output is not yaml: %v\n%s", err, out)
	}
	txns, ok := doc["transactions"].([]any)
	if !ok || len(txns) != 3 {
		t.Fatalf("transactions = %v", doc["transactions"])
	}
	first := txns[0].(map[string]any)
	if first["amount"] != "3000" {
		t.Errorf("amount = %#v, want the string 3000", first["amount"])
	}
	if strings.Contains(out, "{") {
		t.Error("yaml output should use block style")
	}
}

func TestRemindersCommand(t *testing.T) {
	t.Parallel()
	path := writeFile(t, "templates.yaml", sampleYAML)

	out, err := run(t, "reminders", "--file", path, "--start", "2024-03-01", "--end", "2024-03-01", "--timezone", "Europe/Berlin")
	if err != nil {
		t.Fatalf("reminders: %v", err)
	}
	var lines []ReminderLine
	if err := json.Unmarshal([]byte(out), &lines); err != nil {
		t.Fatalf("decode output: %v\n%s", err, out)
	}
	if len(lines) != 2 {
		t.Fatalf("got %d reminders, want 2: %+v", len(lines), lines)
	}
	// 08:00 Berlin minus the largest override of 45 minutes
	if lines[0].Name != "water plants" || lines[0].RemindAt != "2024-03-01T07:15:00+01:00" {
		t.Errorf("first reminder = %+v", lines[0])
	}
	// one-time tasks report their reminder regardless of the window
	if lines[1].Name != "dentist" || lines[1].RemindAt != "2024-03-02T15:00:00Z" {
		t.Errorf("second reminder = %+v", lines[1])
	}
}

func TestSummaryCommand(t *testing.T) {
	t.Parallel()
	path := writeFile(t, "templates.yaml", sampleYAML)

	out, err := run(t, "summary", "--file", path, "--start", "2024-01-01", "--end", "2024-03-31", "--type", "payer")
	if err != nil {
		t.Fatalf("summary: %v", err)
	}
	var summary ledger.Summary
	if err := json.Unmarshal([]byte(out), &summary); err != nil {
		t.Fatalf("decode output: %v\n%s", err, out)
	}
	if !summary.Income.Equal(decimal.NewFromInt(9000)) {
		t.Errorf("income = %s, want 9000", summary.Income)
	}
	if !summary.Expense.Equal(decimal.RequireFromString("120.5")) {
		t.Errorf("expense = %s, want 120.5", summary.Expense)
	}
	if len(summary.Groups) != 2 || summary.Groups[0].Name != "acme" || summary.Groups[1].Name != "alice" {
		t.Errorf("groups = %+v", summary.Groups)
	}
	if summary.Transactions != nil {
		t.Error("transactions should be omitted without --with-transactions")
	}
}

func TestCommandErrors(t *testing.T) {
	t.Parallel()
	good := writeFile(t, "templates.yaml", sampleYAML)
	broken := writeFile(t, "broken.yaml", "tasks:\n  - owner: alice\n    name: x\n    timezone: UTC\n    due_date: \"2024-01-01\"\n    recurrence_rule: FREQ=NOTAREALFREQ\n")
	unknownField := writeFile(t, "unknown.json", `{"tasks": [], "todos": []}`)
	invalid := writeFile(t, "invalid.yaml", "tasks:\n  - name: no owner\n    timezone: UTC\n")

	tests := []struct {
		name string
		args []string
	}{
		{"missing file flag", []string{"expand", "--start", "2024-01-01", "--end", "2024-01-02"}},
		{"missing window", []string{"expand", "--file", good}},
		{"bad output format", []string{"expand", "--file", good, "--start", "2024-01-01", "--end", "2024-01-02", "-o", "xml"}},
		{"malformed rule", []string{"expand", "--file", broken, "--start", "2024-01-01", "--end", "2024-01-02"}},
		{"unknown json field", []string{"expand", "--file", unknownField, "--start", "2024-01-01", "--end", "2024-01-02"}},
		{"invalid template", []string{"expand", "--file", invalid, "--start", "2024-01-01", "--end", "2024-01-02"}},
		{"window over default limit", []string{"expand", "--file", good, "--start", "1900-01-01", "--end", "2100-12-31"}},
		{"window over max-window", []string{"expand", "--file", good, "--start", "2024-01-01", "--end", "2024-03-01", "--max-window", "720h"}},
		{"bad summary type", []string{"summary", "--file", good, "--start", "2024-01-01", "--end", "2024-01-02", "--type", "CATEGORY"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if _, err := run(t, tt.args...); err == nil {
				t.Error("expected error")
			}
		})
	}
}

func TestLoadTemplates_AssignsIDs(t *testing.T) {
	t.Parallel()
	path := writeFile(t, "templates.json", `{"tasks": [{"owner": "alice", "name": "a", "timezone": "UTC", "due_date": "2024-01-01"}]}`)
	file, err := loadTemplates(path)
	if err != nil {
		t.Fatalf("loadTemplates: %v", err)
	}
	if file.Tasks[0].ID.String() == "00000000-0000-0000-0000-000000000000" {
		t.Error("expected an id to be assigned")
	}
}
