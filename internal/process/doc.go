// Package process launches gdb in machine interface mode and exposes it as
// a byte-level duplex stream.
//
//	p, err := process.Start(process.Options{Quiet: true})
//	if err != nil {
//	    return err
//	}
//	defer p.Terminate()
//
// The *Process returned by Start satisfies the gdb.Transport contract:
// Write, ReadByte, Terminate and Wait.
package process
