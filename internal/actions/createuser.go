package actions

import (
	"context"
	"encoding/json"
	"fmt"
	"os/exec"
	"os/user"
	"runtime"

	"github.com/nix-installer/nix-installer-core/internal/action"
)

// TagCreateUser is CreateUser's stable receipt tag.
const TagCreateUser = "nix.create_user"

type createUserPayload struct {
	Username   string `json:"username"`
	UID        int    `json:"uid"`
	GID        int    `json:"gid"`
	Shell      string `json:"shell"`
	HomeDir    string `json:"home_dir"`
	PreExisted bool   `json:"pre_existed"`
}

// CreateUser provisions a single unprivileged build user, the way a Linux
// planner would provision one of the nixbld{N} build users (spec §8
// scenario 1's CreateUser(u=nixbld, gid=3000)).
type CreateUser struct {
	action.Base
	username   string
	uid        int
	gid        int
	shell      string
	homeDir    string
	preExisted bool
}

var _ action.Action = (*CreateUser)(nil)
var _ interface{ RequiresPrivilege() bool } = (*CreateUser)(nil)

// NewCreateUser constructs a Pending-eligible CreateUser action.
func NewCreateUser(username string, uid, gid int, shell, homeDir string) *CreateUser {
	return &CreateUser{
		Base:    action.NewBase(TagCreateUser, fmt.Sprintf("Create user %s (uid %d, gid %d)", username, uid, gid)),
		username: username,
		uid:      uid,
		gid:      gid,
		shell:    shell,
		homeDir:  homeDir,
	}
}

// RequiresPrivilege implements plan.PrivilegedAction.
func (c *CreateUser) RequiresPrivilege() bool { return true }

// Execute probes for an existing user with the right uid/gid before calling
// out to the platform's user-creation tool.
func (c *CreateUser) Execute(ctx context.Context) error {
	if u, err := user.Lookup(c.username); err == nil {
		if matchesUser(u, c.uid, c.gid) {
			c.preExisted = true
			return c.Base.TransitionTo(action.Completed)
		}
		return fmt.Errorf("user %s exists with different uid/gid", c.username)
	}

	name, args, err := createUserCommand(c.username, c.uid, c.gid, c.shell, c.homeDir)
	if err != nil {
		return err
	}

	cmd := exec.CommandContext(ctx, name, args...)
	if out, err := cmd.CombinedOutput(); err != nil {
		return fmt.Errorf("create user %s: %w: %s", c.username, err, string(out))
	}

	c.preExisted = false
	return c.Base.TransitionTo(action.Completed)
}

// Revert deletes the user only if CreateUser actually created it.
func (c *CreateUser) Revert(ctx context.Context) error {
	if !c.preExisted {
		if _, err := user.Lookup(c.username); err == nil {
			name, args := deleteUserCommand(c.username)
			cmd := exec.CommandContext(ctx, name, args...)
			if out, err := cmd.CombinedOutput(); err != nil {
				return fmt.Errorf("delete user %s: %w: %s", c.username, err, string(out))
			}
		}
	}
	return c.Base.TransitionTo(action.Reverted)
}

// Payload implements Action.
func (c *CreateUser) Payload() (json.RawMessage, error) {
	return json.Marshal(createUserPayload{
		Username:   c.username,
		UID:        c.uid,
		GID:        c.gid,
		Shell:      c.shell,
		HomeDir:    c.homeDir,
		PreExisted: c.preExisted,
	})
}

func newCreateUserFromPayload(data json.RawMessage, children []action.Child) (action.Action, error) {
	var p createUserPayload
	if err := json.Unmarshal(data, &p); err != nil {
		return nil, fmt.Errorf("decode create_user payload: %w", err)
	}
	c := NewCreateUser(p.Username, p.UID, p.GID, p.Shell, p.HomeDir)
	c.preExisted = p.PreExisted
	return c, nil
}

func matchesUser(u *user.User, uid, gid int) bool {
	return u.Uid == fmt.Sprint(uid) && u.Gid == fmt.Sprint(gid)
}

func createUserCommand(username string, uid, gid int, shell, homeDir string) (string, []string, error) {
	switch runtime.GOOS {
	case "darwin":
		// macOS user creation is a multi-step dscl dance; out of scope for
		// the reference catalogue beyond naming the entry point a Darwin
		// planner would call.
		return "", nil, fmt.Errorf("darwin user creation requires dscl orchestration, not implemented in the reference catalogue")
	default:
		return "useradd", []string{
			"--uid", fmt.Sprint(uid),
			"--gid", fmt.Sprint(gid),
			"--shell", shell,
			"--home-dir", homeDir,
			"--no-create-home",
			"--system",
			username,
		}, nil
	}
}

func deleteUserCommand(username string) (string, []string) {
	return "userdel", []string{username}
}
