package handler

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/mansoorceksport/liftlog/internal/domain"
	"github.com/mansoorceksport/liftlog/internal/repository"
	"github.com/mansoorceksport/liftlog/internal/service"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type testAPI struct {
	t   *testing.T
	app *fiber.App
}

func newTestAPI(t *testing.T) *testAPI {
	sets := repository.NewMemorySetRepository()
	exercises := repository.NewMemoryExerciseRepository()
	historical := service.NewHistorical1RMService(repository.NewMemoryHistorical1RMStore(), sets)

	wh := NewWorkoutHandler(service.NewWorkoutService(repository.NewMemoryWorkoutRepository(), sets, exercises, historical))
	eh := NewExerciseHandler(service.NewExerciseService(exercises, sets, historical))
	hh := NewHistorical1RMHandler(historical)

	app := fiber.New()
	app.Get("/v1/exercises", eh.ListExercises)
	app.Post("/v1/exercises", eh.CreateExercise)
	app.Put("/v1/exercises/:id", eh.UpdateExercise)
	app.Delete("/v1/exercises/:id", eh.DeleteExercise)
	app.Get("/v1/exercises/:id/historical-1rm", eh.GetHistorical1RM)
	app.Put("/v1/exercises/:id/historical-1rm", eh.SetHistorical1RM)
	app.Delete("/v1/exercises/:id/historical-1rm", eh.ClearHistorical1RM)
	app.Get("/v1/workouts", wh.ListWorkouts)
	app.Post("/v1/workouts", wh.CreateWorkout)
	app.Get("/v1/workouts/:id", wh.GetWorkout)
	app.Put("/v1/workouts/:id/sets", wh.ReplaceSets)
	app.Delete("/v1/workouts/:id", wh.DeleteWorkout)
	app.Get("/v1/historical-1rm", hh.Snapshot)
	app.Post("/v1/historical-1rm/bootstrap", hh.Bootstrap)
	app.Post("/v1/historical-1rm/reset", hh.Reset)

	return &testAPI{t: t, app: app}
}

// do sends a JSON request and decodes the response body into out when non-nil
func (a *testAPI) do(method, path string, body interface{}, out interface{}) int {
	a.t.Helper()

	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(a.t, err)
		reader = bytes.NewReader(data)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")

	resp, err := a.app.Test(req, -1)
	require.NoError(a.t, err)
	defer resp.Body.Close()

	if out != nil {
		require.NoError(a.t, json.NewDecoder(resp.Body).Decode(out))
	}
	return resp.StatusCode
}

func (a *testAPI) createExercise(name string) string {
	a.t.Helper()
	var ex domain.Exercise
	status := a.do(http.MethodPost, "/v1/exercises", map[string]string{"name": name, "muscle_group": "Chest"}, &ex)
	require.Equal(a.t, http.StatusCreated, status)
	return ex.ID
}

type recordResponse struct {
	Value           float64 `json:"historical_1rm"`
	SourceWorkoutID *string `json:"source_workout_id"`
}

type workoutResponse struct {
	ID   string `json:"id"`
	Sets []struct {
		ExerciseID   string   `json:"exercise_id"`
		SetType      string   `json:"set_type"`
		Estimated1RM *float64 `json:"estimated_1rm"`
	} `json:"sets"`
}

func TestWorkoutLifecycle(t *testing.T) {
	api := newTestAPI(t)
	bench := api.createExercise("Bench Press")

	var w1 workoutResponse
	status := api.do(http.MethodPost, "/v1/workouts", map[string]interface{}{
		"name": "Push A",
		"sets": []map[string]interface{}{
			{"exercise_id": bench, "weight": 60, "reps": 10, "set_type": "warmup"},
			{"exercise_id": bench, "weight": 185, "reps": 5},
		},
	}, &w1)
	require.Equal(t, http.StatusCreated, status)
	require.Len(t, w1.Sets, 2)
	assert.Nil(t, w1.Sets[0].Estimated1RM)
	require.NotNil(t, w1.Sets[1].Estimated1RM)
	assert.InDelta(t, 215.83, *w1.Sets[1].Estimated1RM, 0.01)

	var w2 workoutResponse
	status = api.do(http.MethodPost, "/v1/workouts", map[string]interface{}{
		"name": "Push B",
		"sets": []map[string]interface{}{{"exercise_id": bench, "weight": 135, "reps": 5}},
	}, &w2)
	require.Equal(t, http.StatusCreated, status)

	var rec recordResponse
	require.Equal(t, http.StatusOK, api.do(http.MethodGet, "/v1/exercises/"+bench+"/historical-1rm", nil, &rec))
	assert.InDelta(t, 215.83, rec.Value, 0.01)
	require.NotNil(t, rec.SourceWorkoutID)
	assert.Equal(t, w1.ID, *rec.SourceWorkoutID)

	require.Equal(t, http.StatusOK, api.do(http.MethodDelete, "/v1/workouts/"+w1.ID, nil, nil))
	require.Equal(t, http.StatusOK, api.do(http.MethodGet, "/v1/exercises/"+bench+"/historical-1rm", nil, &rec))
	assert.InDelta(t, 157.5, rec.Value, 1e-9)
	assert.Equal(t, w2.ID, *rec.SourceWorkoutID)

	// Editing W2 down to a bodyweight-only set leaves nothing to derive from
	var updated workoutResponse
	status = api.do(http.MethodPut, "/v1/workouts/"+w2.ID+"/sets", map[string]interface{}{
		"sets": []map[string]interface{}{{"exercise_id": bench, "reps": 20}},
	}, &updated)
	require.Equal(t, http.StatusOK, status)
	require.Len(t, updated.Sets, 1)
	assert.Nil(t, updated.Sets[0].Estimated1RM)
	assert.Equal(t, http.StatusNotFound, api.do(http.MethodGet, "/v1/exercises/"+bench+"/historical-1rm", nil, nil))

	var list []map[string]interface{}
	require.Equal(t, http.StatusOK, api.do(http.MethodGet, "/v1/workouts", nil, &list))
	assert.Len(t, list, 1)
}

func TestWorkoutErrors(t *testing.T) {
	api := newTestAPI(t)
	missing := primitive.NewObjectID().Hex()

	assert.Equal(t, http.StatusNotFound, api.do(http.MethodGet, "/v1/workouts/"+missing, nil, nil))
	assert.Equal(t, http.StatusBadRequest, api.do(http.MethodGet, "/v1/workouts/not-an-id", nil, nil))
	assert.Equal(t, http.StatusNotFound, api.do(http.MethodDelete, "/v1/workouts/"+missing, nil, nil))

	status := api.do(http.MethodPost, "/v1/workouts", map[string]interface{}{
		"sets": []map[string]interface{}{{"exercise_id": missing, "weight": 100, "reps": 5}},
	}, nil)
	assert.Equal(t, http.StatusNotFound, status)

	bench := api.createExercise("Bench Press")
	status = api.do(http.MethodPost, "/v1/workouts", map[string]interface{}{
		"sets": []map[string]interface{}{{"exercise_id": bench, "weight": -100, "reps": 5}},
	}, nil)
	assert.Equal(t, http.StatusBadRequest, status)
}

func TestManualHistorical1RM(t *testing.T) {
	api := newTestAPI(t)
	squat := api.createExercise("Back Squat")
	path := "/v1/exercises/" + squat + "/historical-1rm"

	assert.Equal(t, http.StatusNotFound, api.do(http.MethodGet, path, nil, nil))

	var rec recordResponse
	require.Equal(t, http.StatusOK, api.do(http.MethodPut, path, map[string]interface{}{"value": 180}, &rec))
	assert.Equal(t, 180.0, rec.Value)
	assert.Nil(t, rec.SourceWorkoutID)

	assert.Equal(t, http.StatusBadRequest, api.do(http.MethodPut, path, map[string]interface{}{"value": 0}, nil))
	assert.Equal(t, http.StatusBadRequest, api.do(http.MethodPut, path, map[string]interface{}{"value": -5}, nil))
	assert.Equal(t, http.StatusNotFound, api.do(http.MethodPut, "/v1/exercises/"+primitive.NewObjectID().Hex()+"/historical-1rm", map[string]interface{}{"value": 100}, nil))

	// null clears the record
	require.Equal(t, http.StatusOK, api.do(http.MethodPut, path, map[string]interface{}{"value": nil}, nil))
	assert.Equal(t, http.StatusNotFound, api.do(http.MethodGet, path, nil, nil))

	require.Equal(t, http.StatusOK, api.do(http.MethodPut, path, map[string]interface{}{"value": 150}, nil))
	require.Equal(t, http.StatusOK, api.do(http.MethodDelete, path, nil, nil))
	assert.Equal(t, http.StatusNotFound, api.do(http.MethodGet, path, nil, nil))
}

func TestManualHistorical1RM_BodyWithoutValueKeepsRecord(t *testing.T) {
	api := newTestAPI(t)
	squat := api.createExercise("Back Squat")
	path := "/v1/exercises/" + squat + "/historical-1rm"

	require.Equal(t, http.StatusOK, api.do(http.MethodPut, path, map[string]interface{}{"value": 180}, nil))

	bodies := map[string]interface{}{
		"empty object":  map[string]interface{}{},
		"misspelt key":  map[string]interface{}{"vlaue": 200},
		"string value":  map[string]interface{}{"value": "200"},
		"boolean value": map[string]interface{}{"value": true},
	}
	for name, body := range bodies {
		assert.Equal(t, http.StatusBadRequest, api.do(http.MethodPut, path, body, nil), name)
	}

	var rec recordResponse
	require.Equal(t, http.StatusOK, api.do(http.MethodGet, path, nil, &rec))
	assert.Equal(t, 180.0, rec.Value)
	assert.Nil(t, rec.SourceWorkoutID)
}

func TestHistorical1RMMaintenance(t *testing.T) {
	api := newTestAPI(t)
	bench := api.createExercise("Bench Press")
	squat := api.createExercise("Back Squat")

	require.Equal(t, http.StatusCreated, api.do(http.MethodPost, "/v1/workouts", map[string]interface{}{
		"sets": []map[string]interface{}{{"exercise_id": bench, "weight": 100, "reps": 5}},
	}, nil))
	require.Equal(t, http.StatusOK, api.do(http.MethodPut, "/v1/exercises/"+squat+"/historical-1rm", map[string]interface{}{"value": 200}, nil))

	var snap map[string]recordResponse
	require.Equal(t, http.StatusOK, api.do(http.MethodGet, "/v1/historical-1rm", nil, &snap))
	assert.Len(t, snap, 2)
	assert.Nil(t, snap[squat].SourceWorkoutID)

	// Bootstrap recomputes from sets only, dropping the manual squat value
	var bootstrapped map[string]recordResponse
	require.Equal(t, http.StatusOK, api.do(http.MethodPost, "/v1/historical-1rm/bootstrap", nil, &bootstrapped))
	assert.Len(t, bootstrapped, 1)
	assert.Contains(t, bootstrapped, bench)

	var reset map[string]recordResponse
	require.Equal(t, http.StatusOK, api.do(http.MethodPost, "/v1/historical-1rm/reset", nil, &reset))
	assert.Equal(t, bootstrapped, reset)
}

func TestExerciseCRUD(t *testing.T) {
	api := newTestAPI(t)
	id := api.createExercise("Incline Press")

	assert.Equal(t, http.StatusConflict, api.do(http.MethodPost, "/v1/exercises", map[string]string{"name": "Incline Press"}, nil))
	assert.Equal(t, http.StatusBadRequest, api.do(http.MethodPost, "/v1/exercises", map[string]string{"muscle_group": "Chest"}, nil))

	var ex domain.Exercise
	require.Equal(t, http.StatusOK, api.do(http.MethodPut, "/v1/exercises/"+id, map[string]string{"name": "Incline Bench Press", "muscle_group": "Chest"}, &ex))
	assert.Equal(t, "Incline Bench Press", ex.Name)

	var list []domain.Exercise
	require.Equal(t, http.StatusOK, api.do(http.MethodGet, "/v1/exercises?name=bench", nil, &list))
	assert.Len(t, list, 1)

	require.Equal(t, http.StatusOK, api.do(http.MethodPut, "/v1/exercises/"+id+"/historical-1rm", map[string]interface{}{"value": 90}, nil))
	require.Equal(t, http.StatusOK, api.do(http.MethodDelete, "/v1/exercises/"+id, nil, nil))
	assert.Equal(t, http.StatusNotFound, api.do(http.MethodGet, "/v1/exercises/"+id+"/historical-1rm", nil, nil))
	assert.Equal(t, http.StatusNotFound, api.do(http.MethodDelete, "/v1/exercises/"+id, nil, nil))
}

func TestStatusFor(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{domain.ErrNotFound, fiber.StatusNotFound},
		{domain.ErrWorkoutNotFound, fiber.StatusNotFound},
		{domain.ErrInvalidManualValue, fiber.StatusBadRequest},
		{domain.ErrInvalidSet, fiber.StatusBadRequest},
		{domain.ErrDuplicateExercise, fiber.StatusConflict},
		{io.ErrUnexpectedEOF, fiber.StatusInternalServerError},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, statusFor(tt.err), tt.err.Error())
	}
}
