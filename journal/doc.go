// Package journal records executed statements for audit and replay.
//
// A journal is a [quill.Recorder]: pass it to [quill.WithRecorder] and every
// statement the session executes is recorded as a [types.StatementRecord],
// successful or not. Recording is best effort; the session logs and counts a
// failed record but never fails the statement because of it.
//
// # Memory Journal
//
// [MemoryJournal] keeps the most recent records in a bounded ring. It is
// meant for tests, debugging and single-process tooling:
//
//	j := journal.NewMemoryJournal(journal.WithCapacity(1000))
//	session, _ := quill.NewSession(raw, quill.WithRecorder(j))
//
// # NATS JetStream Journal
//
// [NATSJournal] appends records to a JetStream stream, one subject per
// statement kind ("{prefix}.{kind}"). Records survive process restarts and
// can be read back by any process with access to the stream:
//
//	nc, _ := nats.Connect("nats://localhost:4222")
//	js, _ := jetstream.New(nc)
//	j, _ := journal.NewNATSJournal(js, journal.WithStreamName("audit"))
//
// Records are encoded with MessagePack. Bound values keep their MessagePack
// type on the way back: integers decode as int64, and 16 byte UUID values
// travel as an extension and decode as []byte, which CQL drivers accept for
// both uuid and blob columns.
//
// # Re-execution
//
// [Reexecute] rebuilds statements from records with
// [quill.StatementFromRecord] and executes them again, in order:
//
//	recs, _ := j.Replay(ctx, 0)
//	report, err := journal.Reexecute(ctx, session, recs)
package journal
