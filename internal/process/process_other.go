//go:build !unix

package process

import (
	"os"
	"os/exec"
)

func configure(*exec.Cmd) {}

func kill(p *os.Process) error {
	if p == nil {
		return ErrProcessNotStarted
	}
	return p.Kill()
}
