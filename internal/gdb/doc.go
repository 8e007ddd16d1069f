// Package gdb implements a gdb machine interface session.
//
// A Session owns one debugger. Commands are issued from any goroutine;
// each gets a fresh context and a Pending handle that completes when the
// result record carrying that context arrives:
//
//	s, err := gdb.Start(process.Options{Quiet: true}, gdb.WithLogger(log))
//	if err != nil {
//	    return err
//	}
//	defer s.Close()
//
//	s.RegisterHandler(gdb.HandlerFunc(func(s *gdb.Session, msg mi.Message) {
//	    fmt.Println(msg)
//	}))
//
//	res, err := s.Call(ctx, command.FileExecAndSymbols{File: "./prog"})
//
// Everything that is not a result record (stream output, exec, notify and
// status records, the prompt) goes to the handlers, in arrival order, on
// the reader goroutine.
//
// Closing the session, or losing the debugger's output stream, fails every
// outstanding request with ErrSessionClosed. There is no per-command
// cancellation: a caller that stops waiting leaves the request pending
// until its result arrives or the session closes.
package gdb
