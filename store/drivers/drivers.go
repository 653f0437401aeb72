package drivers

import (
	"github.com/ovh/pvfs/driver"
	"github.com/ovh/pvfs/store"
)

func init() {
	driver.RegisterGroup("store", driver.NewGroup((*store.Store)(nil)))
}
