package drivers

import (
	"github.com/ovh/pvfs/data"
	"github.com/ovh/pvfs/driver"
)

func init() {
	driver.RegisterGroup("data", driver.NewGroup((*data.Backend)(nil)))
}
