package workflow_test

import (
	"context"
	"strings"
	"testing"

	"Gin_postgres_redis_lab_inventory/workflow"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"
)

func TestMetricsCountInventoryMovement(t *testing.T) {
	ctx := context.Background()
	reg := prometheus.NewRegistry()
	f := newFixture(t, workflow.WithMetrics(workflow.NewMetrics(reg)))

	reqID, err := f.engine.SubmitRequest(ctx, alice, "IPA001", 1, 3, "")
	require.NoError(t, err)
	_, err = f.engine.SubmitRequest(ctx, alice, "IPA001", 1, 9, "")
	require.Error(t, err)
	require.NoError(t, f.engine.ProcessRequest(ctx, instructor, "IPA001", reqID, workflow.ActionReject))

	expected := `
# HELP lab_inventory_released_units_total Component units put back by rejections and returns
# TYPE lab_inventory_released_units_total counter
lab_inventory_released_units_total 3
# HELP lab_inventory_reserved_units_total Component units reserved by submitted requests
# TYPE lab_inventory_reserved_units_total counter
lab_inventory_reserved_units_total 3
# HELP lab_workflow_operations_total Workflow operations by name and outcome
# TYPE lab_workflow_operations_total counter
lab_workflow_operations_total{op="process_request",outcome="ok"} 1
lab_workflow_operations_total{op="submit_request",outcome="conflict"} 1
lab_workflow_operations_total{op="submit_request",outcome="ok"} 1
`
	require.NoError(t, testutil.GatherAndCompare(reg, strings.NewReader(expected),
		"lab_inventory_released_units_total",
		"lab_inventory_reserved_units_total",
		"lab_workflow_operations_total",
	))
}
