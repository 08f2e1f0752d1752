package migration

import (
	"context"
	"errors"

	"github.com/lherron/habitus/internal/domain"
)

// MigrateTasksToGoals assigns every task without a goal to the default goal
// of its role. Tasks whose role has no default goal are left alone. It
// returns the number of tasks changed; a second run changes nothing.
func (e *Engine) MigrateTasksToGoals(ctx context.Context) (int, error) {
	var tasks []domain.Task
	var goals []domain.Goal
	if err := e.readJSON(ctx, domain.KeyTasks, &tasks); err != nil {
		return 0, withOp(err, "backfill")
	}
	if err := e.readJSON(ctx, domain.KeyGoals, &goals); err != nil {
		return 0, withOp(err, "backfill")
	}

	changed := 0
	for i := range tasks {
		t := &tasks[i]
		if t.HasGoal() {
			continue
		}
		goal, ok := domain.DefaultGoalForRole(goals, t.Role)
		if !ok {
			e.log.Warn().
				Str("task", t.ID).
				Str("role", t.Role).
				Msg("no default goal for role, task left without goal")
			continue
		}
		t.GoalID = goal.ID
		changed++
	}

	if changed == 0 {
		return 0, nil
	}

	value, err := marshalCompact(tasks)
	if err != nil {
		return 0, &Error{Kind: KindWrite, Op: "backfill", Key: domain.KeyTasks, Err: err}
	}
	if err := e.store.Set(ctx, domain.KeyTasks, value); err != nil {
		return 0, &Error{Kind: KindWrite, Op: "backfill", Key: domain.KeyTasks, Err: err}
	}

	e.log.Info().Int("tasks", changed).Msg("tasks assigned to default goals")
	return changed, nil
}

func withOp(err error, op string) error {
	var me *Error
	if errors.As(err, &me) {
		me.Op = op
	}
	return err
}
