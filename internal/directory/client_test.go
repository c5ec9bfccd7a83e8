package directory

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shrimpsizemoose/rollcall/internal/models"
)

func newTestServer(t *testing.T) (*httptest.Server, *[]models.Submission) {
	var submissions []models.Submission
	mux := http.NewServeMux()

	mux.HandleFunc("POST /auth/signin", func(w http.ResponseWriter, r *http.Request) {
		var body map[string]string
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			http.Error(w, "bad body", http.StatusBadRequest)
			return
		}
		if body["password"] != "secret" {
			http.Error(w, "invalid credentials", http.StatusUnauthorized)
			return
		}
		json.NewEncoder(w).Encode(map[string]string{"token": "tok-123"})
	})

	mux.HandleFunc("GET /sections", func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer tok-123" {
			http.Error(w, "no token", http.StatusUnauthorized)
			return
		}
		w.Write([]byte(`[
			{"_id": "sec-1", "name": "A", "branch": "CSE", "year": 2},
			{"_id": "sec-2", "name": "B", "branch": "ECE", "year": "3"}
		]`))
	})

	mux.HandleFunc("GET /sections/{id}/students", func(w http.ResponseWriter, r *http.Request) {
		if r.PathValue("id") != "sec-1" {
			w.Write([]byte(`[]`))
			return
		}
		w.Write([]byte(`[
			{"_id": "st-1", "name": "Ada", "studentId": "R001"},
			{"_id": "", "name": "Ghost", "studentId": "R999"},
			{"_id": "st-2", "name": "Linus", "studentId": "R002"}
		]`))
	})

	mux.HandleFunc("POST /attendance", func(w http.ResponseWriter, r *http.Request) {
		var s models.Submission
		if err := json.NewDecoder(r.Body).Decode(&s); err != nil {
			http.Error(w, "bad body", http.StatusBadRequest)
			return
		}
		submissions = append(submissions, s)
		w.WriteHeader(http.StatusCreated)
	})

	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv, &submissions
}

func TestClient_SignIn(t *testing.T) {
	srv, _ := newTestServer(t)
	c := NewClient(srv.URL+"/", time.Second)

	t.Run("valid credentials", func(t *testing.T) {
		token, err := c.SignIn(context.Background(), "jane@school.edu", "secret")
		require.NoError(t, err)
		assert.Equal(t, "tok-123", token)
	})

	t.Run("invalid credentials", func(t *testing.T) {
		_, err := c.SignIn(context.Background(), "jane@school.edu", "wrong")
		require.Error(t, err)
		var statusErr *StatusError
		require.True(t, errors.As(err, &statusErr))
		assert.Equal(t, http.StatusUnauthorized, statusErr.Code)
	})
}

func TestClient_ListSections(t *testing.T) {
	srv, _ := newTestServer(t)
	c := NewClient(srv.URL, time.Second)

	_, err := c.ListSections(context.Background())
	require.Error(t, err, "request without token must fail")

	c.SetToken("tok-123")
	sections, err := c.ListSections(context.Background())
	require.NoError(t, err)
	require.Len(t, sections, 2)
	assert.Equal(t, models.Section{ID: "sec-1", Name: "A", Branch: "CSE", Year: "2"}, sections[0])
	assert.Equal(t, "B (ECE 3)", sections[1].DisplayName())

	c.SetToken("")
	assert.Empty(t, c.Token())
}

func TestClient_ListStudents(t *testing.T) {
	srv, _ := newTestServer(t)
	c := NewClient(srv.URL, time.Second)

	students, err := c.ListStudents(context.Background(), "sec-1")
	require.NoError(t, err)
	assert.Equal(t, []models.Student{
		{ID: "st-1", Name: "Ada", RollNumber: "R001"},
		{ID: "st-2", Name: "Linus", RollNumber: "R002"},
	}, students)

	students, err = c.ListStudents(context.Background(), "sec-2")
	require.NoError(t, err)
	assert.Empty(t, students)
}

func TestClient_SubmitAttendance(t *testing.T) {
	srv, submissions := newTestServer(t)
	c := NewClient(srv.URL, time.Second)

	err := c.SubmitAttendance(context.Background(), models.Submission{
		SectionID: "sec-1",
		Date:      "2024-01-15T09:00:00Z",
		MarkedBy:  "jane",
		Records: []models.SubmissionRecord{
			{Student: "st-1", Status: "Present"},
			{Student: "st-2", Status: "Absent"},
		},
	})
	require.NoError(t, err)
	require.Len(t, *submissions, 1)
	assert.Equal(t, "sec-1", (*submissions)[0].SectionID)
	assert.Equal(t, "Absent", (*submissions)[0].Records[1].Status)
}

func TestClient_Unreachable(t *testing.T) {
	srv, _ := newTestServer(t)
	url := srv.URL
	srv.Close()

	c := NewClient(url, 200*time.Millisecond)
	_, err := c.ListSections(context.Background())
	assert.Error(t, err)
}
