package model

// ResourceStatus mirrors the catalog's lifecycle for a bookable resource.
type ResourceStatus string

const (
	ResourceAvailable ResourceStatus = "AVAILABLE"
	ResourceBooked    ResourceStatus = "BOOKED"
	ResourceDeleted   ResourceStatus = "DELETED"
)

// Resource is the read-only projection of a catalog entry the engine needs. The
// catalog itself is owned elsewhere.
type Resource struct {
	ID              string         `json:"id" bson:"_id"`
	Name            string         `json:"name" bson:"name"`
	Type            string         `json:"type" bson:"type"`
	InstitutionName string         `json:"institution_name,omitempty" bson:"institution_name,omitempty"`
	Capacity        int            `json:"capacity" bson:"capacity"`
	Status          ResourceStatus `json:"status,omitempty" bson:"status,omitempty"`
}

// Exists reports whether the resource can still be booked. Soft-deleted catalog
// entries are treated as missing.
func (r *Resource) Exists() bool {
	return r != nil && r.Status != ResourceDeleted
}
