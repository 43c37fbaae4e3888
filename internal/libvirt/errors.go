package libvirt

import (
	"errors"

	"github.com/digitalocean/go-libvirt"
)

// notFoundCodes are the libvirt error numbers reported for a missing object.
var notFoundCodes = map[uint32]bool{
	uint32(libvirt.ErrNoDomain):      true,
	uint32(libvirt.ErrNoNetwork):     true,
	uint32(libvirt.ErrNoStoragePool): true,
	uint32(libvirt.ErrNoInterface):   true,
}

// isNotFound reports whether err (or anything it wraps) is a libvirt
// "no such object" error.
func isNotFound(err error) bool {
	var lerr libvirt.Error
	if errors.As(err, &lerr) {
		return notFoundCodes[lerr.Code]
	}
	return false
}

// errorCode extracts the libvirt error number for logging, or 0.
func errorCode(err error) uint32 {
	var lerr libvirt.Error
	if errors.As(err, &lerr) {
		return lerr.Code
	}
	return 0
}
