package contract

import "golang.org/x/mod/semver"

// Version is the engine contract version. Consumers embed it in
// handshakes and snapshots; bump the major version on any breaking
// change to the payload shapes or the weight table.
const Version = "v1.2.0"

// CompatibleWith reports whether a consumer speaking version v can be
// served: the major versions must match and v must not be newer than
// this engine.
func CompatibleWith(v string) bool {
	if !semver.IsValid(v) {
		return false
	}
	return semver.Major(v) == semver.Major(Version) && semver.Compare(v, Version) <= 0
}
