package app

import "luapm/internal/types"

type LockRequest struct {
	ManifestPath string
	LockfilePath string
	RegistryURL  string
	RegistryFile string
	LuaVersion   string
	Concurrency  int
}

type LockResult struct {
	ProjectName  string
	LockfilePath string
	Packages     int
}

type InstallRequest struct {
	ManifestPath string
	LockfilePath string
	RegistryURL  string
	RegistryFile string
	InstallRoot  string
	NoDev        bool
}

type InstallResult struct {
	InstallRoot string
	Installed   int
	Skipped     int
}

type VerifyRequest struct {
	LockfilePath string
	InstallRoot  string
	NoDev        bool
}

type VerifyResult struct {
	Report types.VerificationReport
}

type AuditRequest struct {
	LockfilePath string
	FeedFile     string
}

type AuditResult struct {
	Report types.AuditReport
}

type ListRequest struct {
	LockfilePath string
}

type ListResult struct {
	Lockfile types.Lockfile
}
