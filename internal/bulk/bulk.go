// Package bulk submits several new-user drafts as independent requests.
package bulk

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/five82/homedash/internal/homeapi"
)

// ErrNoValidRows means every draft had an empty required field.
var ErrNoValidRows = errors.New("no valid data to submit")

// Field names a draft column.
type Field int

const (
	FieldUsername Field = iota
	FieldEmail
	FieldPassword
	fieldCount
)

// FieldCount is the number of editable columns per row.
const FieldCount = int(fieldCount)

func (f Field) String() string {
	switch f {
	case FieldUsername:
		return "username"
	case FieldEmail:
		return "email"
	case FieldPassword:
		return "password"
	default:
		return fmt.Sprintf("field(%d)", int(f))
	}
}

// Draft is one editable row.
type Draft struct {
	Username string
	Email    string
	Password string
}

// Complete reports whether every required field is non-blank.
func (d Draft) Complete() bool {
	return strings.TrimSpace(d.Username) != "" &&
		strings.TrimSpace(d.Email) != "" &&
		strings.TrimSpace(d.Password) != ""
}

func (d Draft) user() homeapi.NewUser {
	return homeapi.NewUser{
		Username: strings.TrimSpace(d.Username),
		Email:    strings.TrimSpace(d.Email),
		Password: d.Password,
	}
}

// Get returns the value of f.
func (d Draft) Get(f Field) string {
	switch f {
	case FieldUsername:
		return d.Username
	case FieldEmail:
		return d.Email
	case FieldPassword:
		return d.Password
	default:
		return ""
	}
}

// Form is an ordered list of drafts. It always holds at least one row.
type Form struct {
	rows []Draft
}

// NewForm returns a form with one blank row.
func NewForm() *Form {
	return &Form{rows: []Draft{{}}}
}

// Rows returns a copy of the drafts.
func (f *Form) Rows() []Draft {
	return append([]Draft(nil), f.rows...)
}

// Len returns the number of rows.
func (f *Form) Len() int { return len(f.rows) }

// AddRow appends a blank draft.
func (f *Form) AddRow() {
	f.rows = append(f.rows, Draft{})
}

// Set edits one field of one row.
func (f *Form) Set(row int, field Field, value string) error {
	if row < 0 || row >= len(f.rows) {
		return fmt.Errorf("row %d out of range", row)
	}
	d := &f.rows[row]
	switch field {
	case FieldUsername:
		d.Username = value
	case FieldEmail:
		d.Email = value
	case FieldPassword:
		d.Password = value
	default:
		return fmt.Errorf("unknown field %v", field)
	}
	return nil
}

// Reset discards every row and starts over with one blank draft.
func (f *Form) Reset() {
	f.rows = []Draft{{}}
}

// Valid returns the complete drafts with their row indices.
func (f *Form) Valid() ([]int, []Draft) {
	var idx []int
	var out []Draft
	for i, d := range f.rows {
		if d.Complete() {
			idx = append(idx, i)
			out = append(out, d)
		}
	}
	return idx, out
}

// Creator issues one create request.
type Creator interface {
	RegisterUser(ctx context.Context, user homeapi.NewUser) (string, error)
}

// RowResult is the outcome of one request.
type RowResult struct {
	Row     int
	Message string
	Err     error
}

// Report summarises a submission.
type Report struct {
	Results []RowResult
	// Alerts holds one message per request, success or failure.
	Alerts []string
	// Reload is set once requests were sent, whatever their outcome; the
	// form has been reset to a single blank row.
	Reload bool
	// SessionExpired is set when any request failed with 401/403.
	SessionExpired bool
}

// Issued returns the number of requests sent.
func (r Report) Issued() int { return len(r.Results) }

// Failed returns the number of failed requests.
func (r Report) Failed() int {
	n := 0
	for _, res := range r.Results {
		if res.Err != nil {
			n++
		}
	}
	return n
}

// Submitter sends forms. Limit caps concurrent requests; zero is unlimited.
type Submitter struct {
	Creator Creator
	Limit   int
	Logger  *zap.Logger
}

// Submit sends one request per complete row, concurrently and
// independently, then resets the form. Incomplete rows are discarded too.
func (s Submitter) Submit(ctx context.Context, form *Form) (Report, error) {
	rows, drafts := form.Valid()
	if len(drafts) == 0 {
		return Report{}, ErrNoValidRows
	}
	logger := s.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	results := make([]RowResult, len(drafts))
	var g errgroup.Group
	if s.Limit > 0 {
		g.SetLimit(s.Limit)
	}
	for i, d := range drafts {
		g.Go(func() error {
			msg, err := s.Creator.RegisterUser(ctx, d.user())
			results[i] = RowResult{Row: rows[i], Message: msg, Err: err}
			return nil
		})
	}
	_ = g.Wait()

	report := Report{Results: results, Reload: true}
	for _, res := range results {
		if res.Err != nil {
			if homeapi.IsSessionExpired(res.Err) {
				report.SessionExpired = true
			}
			report.Alerts = append(report.Alerts, homeapi.Message(res.Err))
			logger.Warn("register user failed", zap.Int("row", res.Row), zap.Error(res.Err))
			continue
		}
		report.Alerts = append(report.Alerts, res.Message)
		logger.Info("registered user", zap.Int("row", res.Row))
	}
	form.Reset()
	return report, nil
}
