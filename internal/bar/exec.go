package bar

import "os/exec"

// runShell launches cmd through /bin/sh -c, detached from the bar
// process, the same fire-and-forget spawn modules/script.c uses for
// its own child process rather than blocking the render loop on it.
func runShell(cmd string) error {
	c := exec.Command("/bin/sh", "-c", cmd)
	return c.Start()
}
