// Package mi implements the gdb machine interface (MI) output grammar.
//
// Every line gdb writes in MI mode is one Message:
//
//	[context]~"console text"
//	[context]^done,bkpt={number="1",type="breakpoint"}
//	[context]*stopped,reason="breakpoint-hit",frame={func="main"}
//	(gdb)
//
// Stream messages (console, target, log, prompt) are *StringMessage values;
// records (result, exec, notify, status) are *RecordMessage values whose
// properties form a tree of String, Tuple and List values.
//
// # Parsing
//
// A Parser reads one message per call from any io.ByteReader and never
// reads past the newline that ends it, so it can sit directly on the
// debugger's stdout:
//
//	p := mi.NewParser(bufio.NewReader(stdout))
//	for {
//	    msg, err := p.Next()
//	    if err == io.EOF {
//	        break
//	    }
//	    ...
//	}
//
// Grammar errors (*UnexpectedTokenError, *UnexpectedEOFError) match
// ErrSyntax and are not recoverable: the stream is out of sync.
//
// # Values
//
// Typed accessors never panic. Asking a Tuple for a string returns a
// *TypeMismatchError that matches ErrTypeMismatch:
//
//	frame, err := rec.Properties.Tuple("frame")
//	fn, err := frame.String("func")
package mi
