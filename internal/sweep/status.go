package sweep

import (
	"fmt"

	"k8s.io/apimachinery/pkg/api/meta"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"

	"github.com/lumos-dse/lumos/api/v1alpha1"
)

// Status summarizes results into a DesignSweepStatus. The best record is
// the successful one with the highest mean speedup; the first wins ties.
func Status(runID string, results []Result, generation int64) v1alpha1.DesignSweepStatus {
	status := v1alpha1.DesignSweepStatus{RunID: runID}
	cancelled := 0
	for i := range results {
		res := &results[i]
		switch {
		case res.Cancelled():
			cancelled++
			status.Failed++
		case res.Err != nil:
			status.Failed++
		default:
			status.Completed++
			if status.Best == nil || res.Record.Stats.Mean > status.Best.Stats.Mean {
				status.Best = res.Record.DeepCopy()
			}
		}
	}

	cond := metav1.Condition{
		Type:               v1alpha1.TypeComplete,
		Status:             metav1.ConditionTrue,
		Reason:             v1alpha1.ReasonAllSucceeded,
		ObservedGeneration: generation,
		Message:            fmt.Sprintf("%d design points evaluated", status.Completed),
	}
	switch {
	case cancelled > 0:
		cond.Status = metav1.ConditionFalse
		cond.Reason = v1alpha1.ReasonCancelled
		cond.Message = fmt.Sprintf("%d of %d design points not evaluated", cancelled, len(results))
	case status.Failed > 0:
		cond.Reason = v1alpha1.ReasonSomeFailed
		cond.Message = fmt.Sprintf("%d of %d design points failed", status.Failed, len(results))
	}
	meta.SetStatusCondition(&status.Conditions, cond)
	return status
}
