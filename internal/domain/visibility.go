package domain

// Viewer identifies who is making a request. An anonymous viewer has an
// empty ID and the candidate role.
type Viewer struct {
	ID    string
	Email string
	Role  Role
}

func Anonymous() Viewer {
	return Viewer{Role: RoleCandidate}
}

func (v Viewer) IsAdmin() bool { return v.Role == RoleAdmin }

func (v Viewer) IsRecruiter() bool { return v.Role == RoleRecruiter && v.ID != "" }

func (v Viewer) IsAuthenticated() bool { return v.ID != "" }

// Scope is a cache partition shared by every viewer that sees the same
// listing.
type Scope string

const (
	ScopeAdmin  Scope = "admin"
	ScopePublic Scope = "public"
	// ScopeNone is used by families that have a single partition.
	ScopeNone Scope = ""
)

func RecruiterScope(recruiterID string) Scope {
	return Scope("recruiter:" + recruiterID)
}

// IsRecruiter reports whether s is a per-recruiter scope.
func (s Scope) IsRecruiter() bool {
	return len(s) > len("recruiter:") && s[:len("recruiter:")] == "recruiter:"
}

// ResolveScope maps a viewer onto its listing partition.
func ResolveScope(v Viewer) Scope {
	switch {
	case v.IsAdmin():
		return ScopeAdmin
	case v.IsRecruiter():
		return RecruiterScope(v.ID)
	default:
		return ScopePublic
	}
}

// IsJobVisible reports whether the viewer may see the job at all. Callers
// treat an invisible job exactly like a missing one.
func IsJobVisible(job *Job, v Viewer) bool {
	if job == nil {
		return false
	}
	switch {
	case v.IsAdmin():
		return true
	case v.IsRecruiter():
		return job.IsPublished() || job.IsOwnedBy(v.ID)
	default:
		return job.IsPublished()
	}
}

// CanManageJob reports whether the viewer may modify the job or its
// applicants.
func CanManageJob(job *Job, v Viewer) bool {
	return v.IsAdmin() || (v.IsRecruiter() && job.IsOwnedBy(v.ID))
}

// JobListFilter is the listing predicate matching IsJobVisible.
func JobListFilter(v Viewer) Filter {
	switch {
	case v.IsAdmin():
		return Filter{}
	case v.IsRecruiter():
		return Filter{Any: []Cond{
			Eq("status", string(JobStatusPublished)),
			Eq("createdBy", v.ID),
		}}
	default:
		return Filter{All: []Cond{Eq("status", string(JobStatusPublished))}}
	}
}

// PendingCompanyFilter selects users whose embedded company awaits moderation.
func PendingCompanyFilter() Filter {
	return Filter{All: []Cond{
		Exists("company", true),
		Eq("company.verified", false),
		Eq("company.isActive", false),
	}}
}
