package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bidding-trends/internal/api/models"
	"bidding-trends/internal/config"
	"bidding-trends/internal/dates"
	"bidding-trends/internal/metrics"
	"bidding-trends/internal/model"
	"bidding-trends/internal/store"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func rec(date model.Date, hour int, qty, price []float64) model.BidRecord {
	return model.BidRecord{
		DeliveryDate: date,
		HourEnding:   hour,
		ResourceName: "U1",
		ResourceType: "T1",
		QSE:          "QSE_A",
		Quantities:   qty,
		Prices:       price,
	}
}

func scenarioRecords() []model.BidRecord {
	return []model.BidRecord{
		rec(model.NewDate(2023, 1, 15), 1, []float64{8}, []float64{28}),
		rec(model.NewDate(2024, 1, 15), 1, []float64{10, 20}, []float64{30, 35}),
		rec(model.NewDate(2024, 1, 15), 2, []float64{11}, []float64{31}),
		rec(model.NewDate(2024, 1, 16), 1, []float64{12}, []float64{32}),
		rec(model.NewDate(2024, 1, 16), 1, []float64{13}, []float64{33}),
	}
}

type fakeReloader struct {
	holder  *store.Holder
	records []model.BidRecord
	err     error
	calls   int
}

func (f *fakeReloader) Reload(context.Context) error {
	f.calls++
	if f.err != nil {
		return f.err
	}
	return f.holder.Load(f.records)
}

func (f *fakeReloader) SourceName() string { return "fake" }

type testServer struct {
	router   *gin.Engine
	holder   *store.Holder
	reloader *fakeReloader
}

func newTestServer(t *testing.T, loaded bool) *testServer {
	t.Helper()
	holder := store.NewHolder()
	if loaded {
		require.NoError(t, holder.Load(scenarioRecords()))
	}
	reg := prometheus.NewRegistry()
	rl := &fakeReloader{holder: holder, records: scenarioRecords()}
	router := NewRouter(Deps{
		Holder:   holder,
		Calendar: dates.WeekdayCalendar(),
		Reloader: rl,
		Metrics:  metrics.New(reg),
		Gatherer: reg,
		Server:   config.ServerConfig{CORSOrigins: []string{"*"}},
	})
	return &testServer{router: router, holder: holder, reloader: rl}
}

func (s *testServer) do(t *testing.T, method, path string, query url.Values) *httptest.ResponseRecorder {
	t.Helper()
	target := path
	if len(query) > 0 {
		target += "?" + query.Encode()
	}
	req := httptest.NewRequest(method, target, nil)
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder, dst interface{}) {
	t.Helper()
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), dst), w.Body.String())
}

func errorCode(t *testing.T, w *httptest.ResponseRecorder) string {
	t.Helper()
	var resp models.ErrorResponse
	decode(t, w, &resp)
	return resp.Error.Code
}

func resourceQuery(extra ...string) url.Values {
	q := url.Values{"resource_type": {"T1"}, "resource_name": {"U1"}}
	for i := 0; i+1 < len(extra); i += 2 {
		q.Set(extra[i], extra[i+1])
	}
	return q
}

func TestHealth(t *testing.T) {
	s := newTestServer(t, true)
	w := s.do(t, http.MethodGet, "/health", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var resp models.HealthResponse
	decode(t, w, &resp)
	assert.Equal(t, "ok", resp.Status)
	assert.True(t, resp.DatasetLoaded)
	assert.Equal(t, 1, resp.Version)
	assert.NotEmpty(t, w.Header().Get("X-Request-ID"))
}

func TestNotLoaded(t *testing.T) {
	s := newTestServer(t, false)
	w := s.do(t, http.MethodGet, "/api/v1/resource-types", nil)
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.Equal(t, "DATASET_NOT_LOADED", errorCode(t, w))
}

func TestResourceCascade(t *testing.T) {
	s := newTestServer(t, true)

	w := s.do(t, http.MethodGet, "/api/v1/resource-types", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var types models.ResourceTypesResponse
	decode(t, w, &types)
	assert.Equal(t, []string{"T1"}, types.ResourceTypes)

	w = s.do(t, http.MethodGet, "/api/v1/resources", url.Values{"resource_type": {"T1"}})
	require.Equal(t, http.StatusOK, w.Code)
	var res models.ResourcesResponse
	decode(t, w, &res)
	assert.Equal(t, []string{"U1"}, res.Resources)

	w = s.do(t, http.MethodGet, "/api/v1/resources", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "MISSING_PARAM", errorCode(t, w))
}

func TestListDates(t *testing.T) {
	s := newTestServer(t, true)

	w := s.do(t, http.MethodGet, "/api/v1/dates", resourceQuery())
	require.Equal(t, http.StatusOK, w.Code)
	var resp models.DatesResponse
	decode(t, w, &resp)
	require.Equal(t, 3, resp.Count)
	assert.Equal(t, "all", resp.Mode)
	assert.Equal(t, model.NewDate(2023, 1, 15), resp.Dates[0].Date)
	assert.Equal(t, "Sunday", resp.Dates[0].Weekday)
	assert.False(t, resp.Dates[0].BusinessDay)
	assert.True(t, resp.Dates[1].BusinessDay)

	w = s.do(t, http.MethodGet, "/api/v1/dates", resourceQuery("mode", "year_over_year"))
	require.Equal(t, http.StatusOK, w.Code)
	decode(t, w, &resp)
	require.Equal(t, 1, resp.Count)
	assert.Equal(t, model.NewDate(2024, 1, 15), resp.Dates[0].Date)

	w = s.do(t, http.MethodGet, "/api/v1/dates", resourceQuery("mode", "monthly"))
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "INVALID_MODE", errorCode(t, w))

	w = s.do(t, http.MethodGet, "/api/v1/dates", url.Values{"resource_type": {"T1"}, "resource_name": {"NOPE"}})
	require.Equal(t, http.StatusOK, w.Code)
	decode(t, w, &resp)
	assert.Equal(t, 0, resp.Count)
	assert.NotNil(t, resp.Dates)
}

func TestAdjacentDate(t *testing.T) {
	s := newTestServer(t, true)

	tests := []struct {
		name      string
		date      string
		direction string
		mode      string
		want      model.Date
		moved     bool
	}{
		{"next", "2023-01-15", "next", "", model.NewDate(2024, 1, 15), true},
		{"prev us format", "01/16/2024", "prev", "", model.NewDate(2024, 1, 15), true},
		{"clamp at end", "2024-01-16", "next", "", model.NewDate(2024, 1, 16), false},
		{"clamp at start", "2023-01-15", "PREV", "", model.NewDate(2023, 1, 15), false},
		{"absent date unchanged", "2024-06-01", "next", "", model.NewDate(2024, 6, 1), false},
		{"year mode single pair", "2024-01-15", "next", "year_over_year", model.NewDate(2024, 1, 15), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := s.do(t, http.MethodGet, "/api/v1/dates/adjacent",
				resourceQuery("date", tt.date, "direction", tt.direction, "mode", tt.mode))
			require.Equal(t, http.StatusOK, w.Code, w.Body.String())
			var resp models.AdjacentResponse
			decode(t, w, &resp)
			assert.Equal(t, tt.want, resp.Date)
			assert.Equal(t, tt.moved, resp.Moved)
		})
	}

	w := s.do(t, http.MethodGet, "/api/v1/dates/adjacent", resourceQuery("date", "2024-01-15", "direction", "sideways"))
	assert.Equal(t, "INVALID_DIRECTION", errorCode(t, w))

	w = s.do(t, http.MethodGet, "/api/v1/dates/adjacent", resourceQuery("date", "yesterday", "direction", "next"))
	assert.Equal(t, "INVALID_DATE", errorCode(t, w))

	w = s.do(t, http.MethodGet, "/api/v1/dates/adjacent", resourceQuery("date", "2024-01-15"))
	assert.Equal(t, "MISSING_PARAM", errorCode(t, w))
}

func TestGetCurves(t *testing.T) {
	s := newTestServer(t, true)

	w := s.do(t, http.MethodGet, "/api/v1/curves", resourceQuery("date", "2024-01-15", "hour", "1"))
	require.Equal(t, http.StatusOK, w.Code)
	var one models.CurveResponse
	decode(t, w, &one)
	assert.Equal(t, []float64{10, 20}, one.Quantities)
	assert.Equal(t, []float64{30, 35}, one.Prices)
	assert.Equal(t, 1, one.Hour)

	w = s.do(t, http.MethodGet, "/api/v1/curves", resourceQuery("date", "2024-01-15", "hour", "5"))
	require.Equal(t, http.StatusOK, w.Code)
	decode(t, w, &one)
	assert.Equal(t, []float64{}, one.Prices)

	w = s.do(t, http.MethodGet, "/api/v1/curves", resourceQuery("date", "2024-01-15"))
	require.Equal(t, http.StatusOK, w.Code)
	var day struct {
		Agents []string `json:"agents"`
		Hours  []struct {
			Hour    int       `json:"hour_ending"`
			Present bool      `json:"present"`
			Prices  []float64 `json:"prices"`
		} `json:"hours"`
	}
	decode(t, w, &day)
	assert.Equal(t, []string{"QSE_A"}, day.Agents)
	require.Len(t, day.Hours, 24)
	assert.True(t, day.Hours[1].Present)
	assert.Equal(t, []float64{31}, day.Hours[1].Prices)
	assert.False(t, day.Hours[2].Present)

	w = s.do(t, http.MethodGet, "/api/v1/curves", resourceQuery("date", "2024-01-15", "hour", "25"))
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "INVALID_HOUR", errorCode(t, w))
}

func TestGetCurves_Duplicate(t *testing.T) {
	s := newTestServer(t, true)

	for _, q := range []url.Values{
		resourceQuery("date", "2024-01-16", "hour", "1"),
		resourceQuery("date", "2024-01-16"),
	} {
		w := s.do(t, http.MethodGet, "/api/v1/curves", q)
		require.Equal(t, http.StatusConflict, w.Code)
		var resp models.ErrorResponse
		decode(t, w, &resp)
		assert.Equal(t, "DUPLICATE_RECORD", resp.Error.Code)
		assert.EqualValues(t, 2, resp.Error.Details["count"])
		assert.Equal(t, "2024-01-16", resp.Error.Details["date"])
	}
}

func TestPairsAndYearOverYear(t *testing.T) {
	s := newTestServer(t, true)

	w := s.do(t, http.MethodGet, "/api/v1/pairs", resourceQuery())
	require.Equal(t, http.StatusOK, w.Code)
	var pairs models.PairsResponse
	decode(t, w, &pairs)
	assert.Equal(t, []model.AlignedPair{{Date: model.NewDate(2024, 1, 15), PriorYear: model.NewDate(2023, 1, 15)}}, pairs.Pairs)

	w = s.do(t, http.MethodGet, "/api/v1/compare/year-over-year", resourceQuery("date", "2024-01-15"))
	require.Equal(t, http.StatusOK, w.Code)
	var yoy struct {
		Pair      model.AlignedPair `json:"pair"`
		PriorYear struct {
			Date model.Date `json:"date"`
		} `json:"prior_year"`
	}
	decode(t, w, &yoy)
	assert.Equal(t, model.NewDate(2023, 1, 15), yoy.Pair.PriorYear)
	assert.Equal(t, model.NewDate(2023, 1, 15), yoy.PriorYear.Date)

	w = s.do(t, http.MethodGet, "/api/v1/compare/year-over-year", resourceQuery("date", "2024-01-16"))
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "NO_PRIOR_YEAR", errorCode(t, w))
}

func TestDatasetStatusAndReload(t *testing.T) {
	s := newTestServer(t, false)

	w := s.do(t, http.MethodGet, "/api/v1/dataset", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var status models.DatasetResponse
	decode(t, w, &status)
	assert.False(t, status.Loaded)
	assert.Equal(t, "fake", status.Source)

	w = s.do(t, http.MethodPost, "/api/v1/dataset/reload", nil)
	require.Equal(t, http.StatusOK, w.Code)
	decode(t, w, &status)
	assert.True(t, status.Loaded)
	assert.Equal(t, 5, status.Records)
	assert.Equal(t, 1, status.DuplicateKeys)
	require.Len(t, status.Duplicates, 1)
	assert.Equal(t, 2, status.Duplicates[0].Count)

	s.reloader.err = &model.SchemaError{Index: 3, Field: "QSE", Reason: "missing"}
	w = s.do(t, http.MethodPost, "/api/v1/dataset/reload", nil)
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	assert.Equal(t, "RELOAD_FAILED", errorCode(t, w))

	s.reloader.err = errors.New("bucket unreachable")
	w = s.do(t, http.MethodPost, "/api/v1/dataset/reload", nil)
	assert.Equal(t, http.StatusInternalServerError, w.Code)

	// the dataset from the successful reload is still served
	w = s.do(t, http.MethodGet, "/api/v1/resource-types", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 3, s.reloader.calls)
}

func TestMetricsEndpoint(t *testing.T) {
	s := newTestServer(t, true)
	s.do(t, http.MethodGet, "/api/v1/resource-types", nil)

	w := s.do(t, http.MethodGet, "/metrics", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `bids_http_requests_total{method="GET",route="/api/v1/resource-types",status="200"} 1`)
}

func TestNoRoute(t *testing.T) {
	s := newTestServer(t, true)
	w := s.do(t, http.MethodGet, "/api/v1/nope", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "NOT_FOUND", errorCode(t, w))
}
