// Package amqp implements the core of an AMQP 0-9-1 client: the connection
// and channel state machines, the frame I/O loop, and publisher-confirm /
// delivery bookkeeping. Exchange/queue topology management, consuming, and
// publishing are all exposed as methods on Channel; Connection owns the
// transport and the channel table.
//
// A typical session:
//
//	conn, err := amqp.Dial(ctx, "localhost:5672", amqp.Config{})
//	ch, err := conn.Channel(ctx)
//	_, err = ch.QueueDeclare(ctx, "jobs", true, false, false, false, nil)
//	tag, err := ch.Publish(ctx, "", "jobs", false, false, amqp.BasicProperties{}, body)
package amqp
