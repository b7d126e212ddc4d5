package amqp

import "github.com/arrowstream/amqp091/internal/protocol"

// Table and BasicProperties are aliased from internal/protocol so callers
// outside this module can construct them without reaching into an internal
// package: the wire codec lives in internal/protocol because it has no
// business being part of the public API surface, but the types it defines
// very much do.
type (
	Table           = protocol.Table
	BasicProperties = protocol.BasicProperties
)
