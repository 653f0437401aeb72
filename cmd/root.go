package cmd

import (
	"fmt"
	"path/filepath"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/ovh/pvfs/config"
	"github.com/ovh/pvfs/data"
	datafile "github.com/ovh/pvfs/data/file"
	dataswift "github.com/ovh/pvfs/data/swift"
	"github.com/ovh/pvfs/driver"
	"github.com/ovh/pvfs/fs"
	"github.com/ovh/pvfs/fs/local"
	"github.com/ovh/pvfs/store"
	_ "github.com/ovh/pvfs/store/drivers/bolt"
)

var (
	debug       bool
	rootPath    string
	storePath   string
	storeDriver string
	dataDriver  string
	blockSize   uint
	cacheTTL    time.Duration
	checkPerms  bool

	osContainer   string
	osAuthURL     string
	osUserName    string
	osPassword    string
	osTenant      string
	osRegion      string
	osStorageURL  string
	osAuthToken   string
	osConnections uint32
)

// RootCmd represents the base command when called without any subcommands
var RootCmd = &cobra.Command{
	Use:   "pvfs",
	Short: "The Pluggable Virtual File System",
	Long: "PVFS is a virtual file system core with interchangeable backends.\n\n" +
		"It keeps POSIX attribute and permission semantics in one place\n" +
		"and delegates raw byte storage to a pluggable data backend,\n" +
		"so the same semantics serve a local directory or an object store.\n",
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		if debug {
			logrus.SetLevel(logrus.DebugLevel)
		}
	},
}

// Execute adds all child commands to the root command sets flags appropriately.
func Execute() {
	if err := RootCmd.Execute(); err != nil {
		logrus.Fatal(err)
	}
}

func init() {
	if err := config.Load(); err != nil {
		logrus.Warn(err)
	}

	// Backend options
	RootCmd.PersistentFlags().StringVar(&rootPath, "root", viper.GetString("root"), "Backend root directory")
	RootCmd.PersistentFlags().StringVar(&storePath, "store-path", "", "Index store path (default <root>/index.db)")
	RootCmd.PersistentFlags().StringVar(&storeDriver, "store-driver", viper.GetString("store_driver"), "Index store driver")
	RootCmd.PersistentFlags().StringVar(&dataDriver, "data-driver", viper.GetString("data_driver"), "Data backend driver")
	RootCmd.PersistentFlags().UintVar(&blockSize, "block-size", viper.GetUint("block_size"), "Block size in bytes")
	RootCmd.PersistentFlags().DurationVar(&cacheTTL, "cache-ttl", viper.GetDuration("cache_ttl"), "Attribute cache validity")

	// Permissions
	RootCmd.PersistentFlags().BoolVar(&checkPerms, "check-permissions", viper.GetBool("check_permissions"),
		"Enforce permissions in the backend instead of the host environment")

	// Swift options
	RootCmd.PersistentFlags().StringVar(&osContainer, "os-container-name", viper.GetString("os_container_name"), "Container name")
	RootCmd.PersistentFlags().StringVar(&osAuthURL, "os-auth-url", viper.GetString("os_auth_url"), "Authentification URL")
	RootCmd.PersistentFlags().StringVar(&osUserName, "os-username", viper.GetString("os_username"), "Username")
	RootCmd.PersistentFlags().StringVar(&osPassword, "os-password", viper.GetString("os_password"), "User password")
	RootCmd.PersistentFlags().StringVar(&osTenant, "os-tenant-name", viper.GetString("os_tenant_name"), "Tenant name")
	RootCmd.PersistentFlags().StringVar(&osRegion, "os-region-name", viper.GetString("os_region_name"), "Region name")
	RootCmd.PersistentFlags().StringVar(&osStorageURL, "os-storage-url", viper.GetString("os_storage_url"), "Storage URL")
	RootCmd.PersistentFlags().StringVar(&osAuthToken, "os-auth-token", viper.GetString("os_auth_token"), "Authentification token")
	RootCmd.PersistentFlags().Uint32Var(&osConnections, "os-connections", 4, "Concurrent swift connections")

	// Debug
	RootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "Enable debug log")
}

// newFilesystem assembles a backend from the configured drivers.
func newFilesystem() (*local.LocalFs, store.Store, error) {
	s, ok := driver.GetGroup("store").Get(storeDriver).(store.Store)
	if !ok {
		return nil, nil, fmt.Errorf("driver %q is not a store", storeDriver)
	}

	path := storePath
	if path == "" {
		path = filepath.Join(rootPath, "index.db")
	}
	if err := s.Init(path); err != nil {
		return nil, nil, err
	}

	d, ok := driver.GetGroup("data").Get(dataDriver).(data.Backend)
	if !ok {
		return nil, nil, fmt.Errorf("driver %q is not a data backend", dataDriver)
	}

	var conf interface{}
	switch dataDriver {
	case "Swift":
		conf = &dataswift.Config{
			Container:   osContainer,
			Connections: osConnections,
			AuthURL:     osAuthURL,
			UserName:    osUserName,
			APIKey:      osPassword,
			Tenant:      osTenant,
			Region:      osRegion,
			StorageURL:  osStorageURL,
			AuthToken:   osAuthToken,
		}
	default:
		conf = &datafile.Config{Root: filepath.Join(rootPath, "data")}
	}
	if err := d.Setup(conf); err != nil {
		return nil, nil, err
	}

	fsys, err := local.New(&local.Config{
		Root:      rootPath,
		BlockSize: uint32(blockSize),
		CacheTTL:  cacheTTL,
		Policy:    fs.NewPolicy(checkPerms, 0, nil),
		Store:     s,
		Data:      d,
	})
	if err != nil {
		return nil, nil, err
	}
	return fsys, s, nil
}
