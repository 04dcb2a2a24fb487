package audit

import (
	"context"

	"github.com/xavierspacelix/jamming/pkg/log"
)

// Audit actions.
const (
	ActionRoomCreate   = "room.create"
	ActionQueueAppend  = "queue.append"
	ActionQueueRemove  = "queue.remove"
	ActionQueueReorder = "queue.reorder"
	ActionQueueVote    = "queue.vote"
)

// Field constants for audit entries.
const (
	FieldAction = "action"
	FieldActor  = "actor"
)

// Log emits a structured audit log entry via the context logger.
func Log(ctx context.Context, action string, actor string, msg string) {
	l := log.Ctx(ctx)
	l.Info().
		Str(log.FieldLogType, log.LogTypeAudit).
		Str(FieldAction, action).
		Str(FieldActor, actor).
		Msg(msg)
}
