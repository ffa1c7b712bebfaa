package metrics

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMiddleware_UsesRouteTemplate(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(Middleware())
	r.GET("/volunteer/:id", func(c *gin.Context) { c.Status(http.StatusNoContent) })

	counter := HTTPRequestsTotal.WithLabelValues("/volunteer/:id", http.MethodGet, "204")
	before := testutil.ToFloat64(counter)

	for _, id := range []string{"a", "b"} {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/volunteer/"+id, nil))
		require.Equal(t, http.StatusNoContent, w.Code)
	}

	assert.Equal(t, before+2, testutil.ToFloat64(counter))

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/nowhere", nil))
	assert.Equal(t, float64(1), testutil.ToFloat64(HTTPRequestsTotal.WithLabelValues("unmatched", http.MethodGet, "404")))
}

func TestRecordWorkflow(t *testing.T) {
	ok := WorkflowOutcomes.WithLabelValues(OpCancel, OutcomeOK)
	before := testutil.ToFloat64(ok)

	RecordWorkflow(OpCancel, "")
	assert.Equal(t, before+1, testutil.ToFloat64(ok))

	RecordWorkflow(OpCancel, "NOT_FOUND")
	assert.Equal(t, float64(1), testutil.ToFloat64(WorkflowOutcomes.WithLabelValues(OpCancel, "NOT_FOUND")))
}

func TestHandler_Exposition(t *testing.T) {
	RecordWorkflow(OpApply, "")

	w := httptest.NewRecorder()
	Handler().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.True(t, strings.Contains(w.Body.String(), "volunteer_workflow_outcomes_total"))
}
