// PVFS implements a pluggable virtual file system core.
package main

import "github.com/ovh/pvfs/cmd"

func main() {
	cmd.Execute()
}
