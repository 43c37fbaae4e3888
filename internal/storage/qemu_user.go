package storage

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"os/user"
	"strings"
)

// DefaultQEMUConf is the qemu driver configuration read by LookupQEMUOwner.
const DefaultQEMUConf = "/etc/libvirt/qemu.conf"

// Owner is a numeric uid/gid pair as libvirt expects it in pool XML.
type Owner struct {
	UID string
	GID string
}

// LookupQEMUOwner returns the account the qemu driver runs guests as.
// It attempts multiple strategies to determine the correct user:
// 1. The user/group configured in confPath
// 2. Common user names (qemu, libvirt-qemu)
//
// An error means no account was found and pool ownership should be left
// to libvirt.
func LookupQEMUOwner(confPath string) (Owner, error) {
	username, groupname := readQEMUConf(confPath)

	if username != "" {
		if u, err := user.Lookup(username); err == nil {
			owner := Owner{UID: u.Uid, GID: u.Gid}
			if groupname != "" {
				if g, err := user.LookupGroup(groupname); err == nil {
					owner.GID = g.Gid
				}
			}
			return owner, nil
		}
	}

	for _, name := range []string{"qemu", "libvirt-qemu"} {
		if u, err := user.Lookup(name); err == nil {
			return Owner{UID: u.Uid, GID: u.Gid}, nil
		}
	}

	return Owner{}, fmt.Errorf("could not determine QEMU user/group")
}

// readQEMUConf extracts the configured user and group names from confPath.
// Returns empty strings if the file doesn't exist or the settings aren't found.
func readQEMUConf(confPath string) (username, groupname string) {
	file, err := os.Open(confPath)
	if err != nil {
		return "", ""
	}
	defer func() { _ = file.Close() }()

	return parseQEMUConf(file)
}

func parseQEMUConf(r io.Reader) (username, groupname string) {
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())

		// Skip comments and empty lines
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		key, value, ok := strings.Cut(line, "=")
		if !ok {
			continue
		}
		value = strings.Trim(strings.TrimSpace(value), "\"'")

		switch strings.TrimSpace(key) {
		case "user":
			username = value
		case "group":
			groupname = value
		}
	}

	return username, groupname
}
