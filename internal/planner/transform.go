package planner

import (
	"fmt"

	"github.com/kubescout/kubescout/pkg/models"
)

// BuildQueues transforms an approved plan into the research task queues:
// one pending task per section, in ascending section order, completed
// queue empty. The transformation is all-or-nothing; an invalid plan
// produces no queues at all.
func BuildQueues(plan *models.Plan) (*models.TaskQueues, error) {
	if plan == nil {
		return nil, fmt.Errorf("no plan to transform")
	}
	if err := plan.Validate(); err != nil {
		return nil, fmt.Errorf("transform plan: %w", err)
	}

	queues := &models.TaskQueues{}
	for _, section := range plan.Sorted() {
		queues.Pending = append(queues.Pending, models.NewResearchTask(section))
	}
	return queues, nil
}
