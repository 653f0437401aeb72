package local

import (
	"syscall"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"

	"github.com/ovh/pvfs/fs"
)

// EnforcingTestSuite exercises the backend with permission checks
// turned on.
type EnforcingTestSuite struct {
	LocalFsTestSuite
}

func (suite *EnforcingTestSuite) SetupTest() {
	suite.newFs(true)

	// Open up the root directory so unprivileged identities can
	// create entries in it.
	_, _, err := suite.fsys.SetAttr(suite.c, 0, 0, fs.RootInode, fs.SetAttrParam{Mode: u32(0o777)})
	require.NoError(suite.T(), err)
}

func (suite *EnforcingTestSuite) TestCreateDeniedInForeignDirectory() {
	d := suite.mkdir(fs.RootInode, "d", 0o700, 1000, 1000)

	_, _, _, err := suite.fsys.MkNod(suite.c, fs.CreateParam{
		Parent: d,
		Name:   "f",
		Mode:   0o644,
		Uid:    2000,
		Gid:    2000,
		Kind:   fs.KindRegular,
	})
	assert.ErrorIs(suite.T(), err, fs.ErrPermission)

	_, _, _, err = suite.fsys.MkNod(suite.c, fs.CreateParam{
		Parent: d,
		Name:   "f",
		Mode:   0o644,
		Uid:    1000,
		Gid:    1000,
		Kind:   fs.KindRegular,
	})
	assert.NoError(suite.T(), err)
}

func (suite *EnforcingTestSuite) TestOpenDenied() {
	d := suite.mkdir(fs.RootInode, "d", 0o777, 1000, 1000)
	ino := suite.mknod(d, "f", 0o600, 1000, 1000)

	_, err := suite.fsys.Open(suite.c, 2000, 2000, ino, uint32(syscall.O_RDONLY))
	assert.ErrorIs(suite.T(), err, fs.ErrPermission)

	_, err = suite.fsys.Open(suite.c, 1000, 1000, ino, uint32(syscall.O_RDWR))
	assert.NoError(suite.T(), err)

	// Root bypasses the mode bits entirely.
	_, err = suite.fsys.Open(suite.c, 0, 0, ino, uint32(syscall.O_RDWR))
	assert.NoError(suite.T(), err)
}

func (suite *EnforcingTestSuite) TestSetAttrDeniedLeavesRecordUntouched() {
	d := suite.mkdir(fs.RootInode, "d", 0o777, 1000, 1000)
	ino := suite.mknod(d, "f", 0o644, 1000, 1000)

	_, before, err := suite.fsys.GetAttr(suite.c, ino)
	require.NoError(suite.T(), err)

	_, _, err = suite.fsys.SetAttr(suite.c, 2000, 2000, ino, fs.SetAttrParam{Mode: u32(0o600)})
	assert.ErrorIs(suite.T(), err, fs.ErrPermission)

	_, after, err := suite.fsys.GetAttr(suite.c, ino)
	require.NoError(suite.T(), err)
	assert.Equal(suite.T(), before, after)
}

func (suite *EnforcingTestSuite) TestUnlinkSticky() {
	d := suite.mkdir(fs.RootInode, "d", 0o1777, 1000, 1000)
	suite.mknod(d, "theirs", 0o644, 1000, 1000)
	suite.mknod(d, "mine", 0o644, 2000, 2000)

	// A third party may remove nothing in a sticky directory.
	err := suite.fsys.Unlink(suite.c, 3000, 3000, d, "theirs")
	assert.ErrorIs(suite.T(), err, fs.ErrPermission)

	// The entry owner may remove its own entry, the directory owner
	// anything, root anything.
	assert.NoError(suite.T(), suite.fsys.Unlink(suite.c, 2000, 2000, d, "mine"))
	assert.NoError(suite.T(), suite.fsys.Unlink(suite.c, 1000, 1000, d, "theirs"))
}

func (suite *EnforcingTestSuite) TestRenameDeniedInReadOnlyDirectory() {
	d := suite.mkdir(fs.RootInode, "d", 0o755, 1000, 1000)
	suite.mknod(d, "f", 0o644, 1000, 1000)

	err := suite.fsys.Rename(suite.c, 2000, 2000, fs.RenameParam{
		OldParent: d,
		OldName:   "f",
		NewParent: d,
		NewName:   "g",
	})
	assert.ErrorIs(suite.T(), err, fs.ErrPermission)

	err = suite.fsys.Rename(suite.c, 1000, 1000, fs.RenameParam{
		OldParent: d,
		OldName:   "f",
		NewParent: d,
		NewName:   "g",
	})
	assert.NoError(suite.T(), err)
}

func TestRunEnforcingSuite(t *testing.T) {
	suite.Run(t, new(EnforcingTestSuite))
}
