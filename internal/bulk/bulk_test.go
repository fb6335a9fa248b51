package bulk

import (
	"context"
	"errors"
	"net/http"
	"sort"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/five82/homedash/internal/homeapi"
)

type recordingCreator struct {
	mu    sync.Mutex
	users []homeapi.NewUser
	fail  map[string]error
}

func (r *recordingCreator) RegisterUser(_ context.Context, u homeapi.NewUser) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.users = append(r.users, u)
	if err := r.fail[u.Username]; err != nil {
		return "", err
	}
	return "Registered " + u.Username, nil
}

func (r *recordingCreator) names() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, 0, len(r.users))
	for _, u := range r.users {
		out = append(out, u.Username)
	}
	sort.Strings(out)
	return out
}

func fill(t *testing.T, f *Form, row int, user, email, pass string) {
	t.Helper()
	require.NoError(t, f.Set(row, FieldUsername, user))
	require.NoError(t, f.Set(row, FieldEmail, email))
	require.NoError(t, f.Set(row, FieldPassword, pass))
}

func TestSubmit_SkipsIncompleteRows(t *testing.T) {
	f := NewForm()
	f.AddRow()
	f.AddRow()
	fill(t, f, 0, "ana", "ana@example.com", "pw1")
	fill(t, f, 1, "ben", "ben@example.com", "")
	fill(t, f, 2, "cy", "cy@example.com", "pw3")

	creator := &recordingCreator{}
	report, err := Submitter{Creator: creator}.Submit(context.Background(), f)
	require.NoError(t, err)

	assert.Equal(t, 2, report.Issued())
	assert.Equal(t, []string{"ana", "cy"}, creator.names())
	assert.Equal(t, []string{"Registered ana", "Registered cy"}, report.Alerts)
}

func TestSubmit_SuccessResetsForm(t *testing.T) {
	f := NewForm()
	f.AddRow()
	fill(t, f, 0, "ana", "a@example.com", "pw")
	fill(t, f, 1, "ben", "b@example.com", "pw")

	creator := &recordingCreator{}
	s := Submitter{Creator: creator}
	report, err := s.Submit(context.Background(), f)
	require.NoError(t, err)
	assert.Zero(t, report.Failed())
	assert.True(t, report.Reload)
	require.Equal(t, 1, f.Len())
	assert.Equal(t, Draft{}, f.Rows()[0])

	_, err = s.Submit(context.Background(), f)
	assert.ErrorIs(t, err, ErrNoValidRows, "the same users are not registered twice")
	assert.Len(t, creator.names(), 2)
}

func TestSubmit_NoValidRows(t *testing.T) {
	f := NewForm()
	require.NoError(t, f.Set(0, FieldUsername, "   "))

	creator := &recordingCreator{}
	_, err := Submitter{Creator: creator}.Submit(context.Background(), f)
	assert.ErrorIs(t, err, ErrNoValidRows)
	assert.Empty(t, creator.names())
}

func TestSubmit_FailureReloadsAndAlertsPerRequest(t *testing.T) {
	f := NewForm()
	f.AddRow()
	f.AddRow()
	fill(t, f, 0, "ana", "a@example.com", "pw")
	fill(t, f, 1, "ben", "b@example.com", "pw")
	fill(t, f, 2, "cy", "c@example.com", "pw")

	creator := &recordingCreator{fail: map[string]error{
		"ben": &homeapi.APIError{Status: http.StatusBadRequest, Message: "Email already used"},
	}}
	report, err := Submitter{Creator: creator, Limit: 1}.Submit(context.Background(), f)
	require.NoError(t, err)

	assert.Equal(t, 3, report.Issued())
	assert.Equal(t, 1, report.Failed())
	assert.True(t, report.Reload)
	assert.False(t, report.SessionExpired)
	assert.Contains(t, report.Alerts, "Email already used")
	assert.Equal(t, 1, f.Len())
	assert.Equal(t, Draft{}, f.Rows()[0])
}

func TestSubmit_SessionExpiredFlagged(t *testing.T) {
	f := NewForm()
	fill(t, f, 0, "ana", "a@example.com", "pw")

	creator := &recordingCreator{fail: map[string]error{
		"ana": &homeapi.APIError{Status: http.StatusUnauthorized},
	}}
	report, err := Submitter{Creator: creator}.Submit(context.Background(), f)
	require.NoError(t, err)
	assert.True(t, report.SessionExpired)
	assert.True(t, report.Reload)
}

func TestSubmit_ResultsKeepRowIndices(t *testing.T) {
	f := NewForm()
	f.AddRow()
	fill(t, f, 1, "solo", "s@example.com", "pw")

	creator := &recordingCreator{fail: map[string]error{"solo": errors.New("dial tcp: refused")}}
	report, err := Submitter{Creator: creator}.Submit(context.Background(), f)
	require.NoError(t, err)
	require.Len(t, report.Results, 1)
	assert.Equal(t, 1, report.Results[0].Row)
	assert.Equal(t, []string{"dial tcp: refused"}, report.Alerts)
}

func TestFormEditing(t *testing.T) {
	f := NewForm()
	assert.Equal(t, 1, f.Len())
	assert.Error(t, f.Set(3, FieldEmail, "x"))
	assert.Error(t, f.Set(0, Field(9), "x"))

	require.NoError(t, f.Set(0, FieldEmail, "e@example.com"))
	assert.Equal(t, "e@example.com", f.Rows()[0].Get(FieldEmail))
	assert.Equal(t, "password", FieldPassword.String())
}
