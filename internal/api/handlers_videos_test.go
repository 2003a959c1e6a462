// Swipelab - Short-Form Video Research Study Platform
// Copyright 2026 Swipelab Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/swipelab/swipelab

package api

import (
	"net/http"
	"testing"

	"github.com/goccy/go-json"
	"github.com/google/uuid"

	"github.com/swipelab/swipelab/internal/models"
)

// studyFixture is a registered researcher with one project, experiment
// and social account, built through the API.
type studyFixture struct {
	token      string
	project    models.Project
	experiment models.Experiment
	account    models.SocialAccount
}

func newStudyFixture(t *testing.T, ts *testServer) *studyFixture {
	t.Helper()

	f := &studyFixture{token: ts.register(t, uuid.NewString()+"@example.edu")}

	rec := ts.do(t, http.MethodPost, "/api/v1/projects/", f.token, map[string]interface{}{
		"name":              "Attention Study",
		"randomizationSeed": 12345,
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("create project failed with %d: %s", rec.Code, rec.Body.String())
	}
	decodeData(t, rec, &f.project)

	rec = ts.do(t, http.MethodPost, "/api/v1/projects/"+f.project.ID.String()+"/experiments", f.token,
		map[string]interface{}{"name": "Run 1", "isActive": true})
	if rec.Code != http.StatusCreated {
		t.Fatalf("create experiment failed with %d: %s", rec.Code, rec.Body.String())
	}
	decodeData(t, rec, &f.experiment)

	rec = ts.do(t, http.MethodPost, "/api/v1/accounts/", f.token, map[string]interface{}{
		"username":    "creator",
		"displayName": "Creator",
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("create account failed with %d: %s", rec.Code, rec.Body.String())
	}
	decodeData(t, rec, &f.account)

	return f
}

// appendVideo adds one video through the API and returns it.
func (f *studyFixture) appendVideo(t *testing.T, ts *testServer, filename string, locked bool) models.Video {
	t.Helper()

	rec := ts.do(t, http.MethodPost, "/api/v1/experiments/"+f.experiment.ID.String()+"/videos", f.token,
		map[string]interface{}{
			"socialAccountId": f.account.ID,
			"filename":        filename,
			"isLocked":        locked,
		})
	if rec.Code != http.StatusCreated {
		t.Fatalf("append %s failed with %d: %s", filename, rec.Code, rec.Body.String())
	}
	var v models.Video
	decodeData(t, rec, &v)
	return v
}

func TestAppendVideoAssignsPositions(t *testing.T) {
	ts := newTestServer(t)
	f := newStudyFixture(t, ts)

	for i, name := range []string{"a.mp4", "b.mp4", "c.mp4"} {
		v := f.appendVideo(t, ts, name, false)
		if v.Position != i {
			t.Errorf("%s: expected position %d, got %d", name, i, v.Position)
		}
	}
}

func TestReorderEndpoint(t *testing.T) {
	ts := newTestServer(t)
	f := newStudyFixture(t, ts)

	a := f.appendVideo(t, ts, "a.mp4", false)
	b := f.appendVideo(t, ts, "b.mp4", false)
	c := f.appendVideo(t, ts, "c.mp4", false)

	rec := ts.do(t, http.MethodPut, "/api/v1/experiments/"+f.experiment.ID.String()+"/videos/order", f.token,
		map[string]interface{}{"videoIds": []uuid.UUID{c.ID, a.ID, b.ID}})
	if rec.Code != http.StatusOK {
		t.Fatalf("reorder failed with %d: %s", rec.Code, rec.Body.String())
	}

	var videos []models.Video
	decodeData(t, rec, &videos)
	want := []string{"c.mp4", "a.mp4", "b.mp4"}
	for i, v := range videos {
		if v.Filename != want[i] {
			t.Errorf("slot %d: expected %s, got %s", i, want[i], v.Filename)
		}
	}
}

func TestReorderEndpointRejectsPartial(t *testing.T) {
	ts := newTestServer(t)
	f := newStudyFixture(t, ts)

	a := f.appendVideo(t, ts, "a.mp4", false)
	f.appendVideo(t, ts, "b.mp4", false)

	rec := ts.do(t, http.MethodPut, "/api/v1/experiments/"+f.experiment.ID.String()+"/videos/order", f.token,
		map[string]interface{}{"videoIds": []uuid.UUID{a.ID}})
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d: %s", rec.Code, rec.Body.String())
	}

	var envelope struct {
		Error *APIError `json:"error"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &envelope); err != nil {
		t.Fatalf("failed to decode envelope: %v", err)
	}
	if envelope.Error == nil || envelope.Error.Code != ErrCodeValidationFailed {
		t.Fatalf("expected VALIDATION_FAILED, got %+v", envelope.Error)
	}

	details, ok := envelope.Error.Details.(map[string]interface{})
	if !ok {
		t.Fatalf("expected structured details, got %T", envelope.Error.Details)
	}
	if details["code"] != "count_mismatch" {
		t.Errorf("expected count_mismatch, got %v", details["code"])
	}
}

func TestBulkDeleteEndpoint(t *testing.T) {
	ts := newTestServer(t)
	f := newStudyFixture(t, ts)

	a := f.appendVideo(t, ts, "a.mp4", false)
	f.appendVideo(t, ts, "b.mp4", false)
	c := f.appendVideo(t, ts, "c.mp4", false)

	rec := ts.do(t, http.MethodPost, "/api/v1/experiments/"+f.experiment.ID.String()+"/videos/bulk-delete", f.token,
		map[string]interface{}{"videoIds": []uuid.UUID{a.ID, c.ID}})
	if rec.Code != http.StatusOK {
		t.Fatalf("bulk delete failed with %d: %s", rec.Code, rec.Body.String())
	}

	var result map[string]int64
	decodeData(t, rec, &result)
	if result["deleted"] != 2 {
		t.Errorf("expected 2 deleted, got %d", result["deleted"])
	}

	rec = ts.do(t, http.MethodGet, "/api/v1/experiments/"+f.experiment.ID.String()+"/videos", f.token, nil)
	var videos []models.Video
	decodeData(t, rec, &videos)
	if len(videos) != 1 || videos[0].Filename != "b.mp4" {
		t.Errorf("expected only b.mp4 to survive, got %d videos", len(videos))
	}
}

func TestVideoEndpointsEnforceOwnership(t *testing.T) {
	ts := newTestServer(t)
	f := newStudyFixture(t, ts)
	stranger := ts.register(t, "mallory@example.edu")

	rec := ts.do(t, http.MethodGet, "/api/v1/experiments/"+f.experiment.ID.String()+"/videos", stranger, nil)
	if rec.Code != http.StatusNotFound {
		t.Errorf("expected 404 for foreign experiment, got %d", rec.Code)
	}
}

func TestAppendVideoUnknownAccount(t *testing.T) {
	ts := newTestServer(t)
	f := newStudyFixture(t, ts)

	rec := ts.do(t, http.MethodPost, "/api/v1/experiments/"+f.experiment.ID.String()+"/videos", f.token,
		map[string]interface{}{
			"socialAccountId": uuid.New(),
			"filename":        "a.mp4",
		})
	if rec.Code != http.StatusBadRequest {
		t.Errorf("expected 400 for unknown account, got %d: %s", rec.Code, rec.Body.String())
	}
}
