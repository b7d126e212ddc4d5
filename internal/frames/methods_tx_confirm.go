package frames

import (
	"github.com/arrowstream/amqp091/internal/buffer"
	"github.com/arrowstream/amqp091/internal/protocol"
)

// --- confirm class (85), RabbitMQ extension ---

type ConfirmSelect struct {
	NoWait bool
}

func (ConfirmSelect) ClassID() uint16  { return protocol.ClassConfirm }
func (ConfirmSelect) MethodID() uint16 { return 10 }
func (m ConfirmSelect) Marshal(w *buffer.Buffer) error {
	protocol.WriteBool(w, m.NoWait)
	return nil
}

type ConfirmSelectOk struct{}

func (ConfirmSelectOk) ClassID() uint16               { return protocol.ClassConfirm }
func (ConfirmSelectOk) MethodID() uint16              { return 11 }
func (ConfirmSelectOk) Marshal(w *buffer.Buffer) error { return nil }

func init() {
	register(protocol.ClassConfirm, 11, func(r *buffer.Buffer) (Method, error) {
		return ConfirmSelectOk{}, nil
	})
}

// --- tx class (90) ---

type TxSelect struct{}

func (TxSelect) ClassID() uint16               { return protocol.ClassTx }
func (TxSelect) MethodID() uint16              { return 10 }
func (TxSelect) Marshal(w *buffer.Buffer) error { return nil }

type TxSelectOk struct{}

func (TxSelectOk) ClassID() uint16               { return protocol.ClassTx }
func (TxSelectOk) MethodID() uint16              { return 11 }
func (TxSelectOk) Marshal(w *buffer.Buffer) error { return nil }

func init() {
	register(protocol.ClassTx, 11, func(r *buffer.Buffer) (Method, error) {
		return TxSelectOk{}, nil
	})
}

type TxCommit struct{}

func (TxCommit) ClassID() uint16               { return protocol.ClassTx }
func (TxCommit) MethodID() uint16              { return 20 }
func (TxCommit) Marshal(w *buffer.Buffer) error { return nil }

type TxCommitOk struct{}

func (TxCommitOk) ClassID() uint16               { return protocol.ClassTx }
func (TxCommitOk) MethodID() uint16              { return 21 }
func (TxCommitOk) Marshal(w *buffer.Buffer) error { return nil }

func init() {
	register(protocol.ClassTx, 21, func(r *buffer.Buffer) (Method, error) {
		return TxCommitOk{}, nil
	})
}

type TxRollback struct{}

func (TxRollback) ClassID() uint16               { return protocol.ClassTx }
func (TxRollback) MethodID() uint16              { return 30 }
func (TxRollback) Marshal(w *buffer.Buffer) error { return nil }

type TxRollbackOk struct{}

func (TxRollbackOk) ClassID() uint16               { return protocol.ClassTx }
func (TxRollbackOk) MethodID() uint16              { return 31 }
func (TxRollbackOk) Marshal(w *buffer.Buffer) error { return nil }

func init() {
	register(protocol.ClassTx, 31, func(r *buffer.Buffer) (Method, error) {
		return TxRollbackOk{}, nil
	})
}
