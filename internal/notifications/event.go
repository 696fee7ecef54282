package notifications

import (
	"github.com/google/uuid"

	dbtypes "github.com/collabhub/projects-backend/pkg/db/types"
	"github.com/collabhub/projects-backend/pkg/enums"
)

// Event is one domain mutation handed to the engine. SenderID is nil for
// system-originated actions; Context carries the type-specific payload.
type Event struct {
	ID        uuid.UUID
	Action    enums.EventAction
	ProjectID uuid.UUID
	SenderID  *uuid.UUID
	Context   dbtypes.NotificationContext
}
