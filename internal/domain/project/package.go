package project

// Package is the subscription tier a client signed up for. It determines the
// monthly change-request allowance and which phases are payment-gated.
type Package string

const (
	PackageStarter      Package = "starter"
	PackageProfessional Package = "professional"
	PackageBusiness     Package = "business"
	PackageWebshop      Package = "webshop"
)

// IsValid returns true if the package is one of the defined constants.
func (p Package) IsValid() bool {
	switch p {
	case PackageStarter, PackageProfessional, PackageBusiness, PackageWebshop:
		return true
	default:
		return false
	}
}

// String implements fmt.Stringer.
func (p Package) String() string {
	return string(p)
}

// ServiceType is the kind of deliverable the engagement covers.
type ServiceType string

const (
	ServiceWebsite ServiceType = "website"
	ServiceWebshop ServiceType = "webshop"
	ServiceLogo    ServiceType = "logo"
	ServiceDrone   ServiceType = "drone"
)

// IsValid returns true if the service type is one of the defined constants.
func (s ServiceType) IsValid() bool {
	switch s {
	case ServiceWebsite, ServiceWebshop, ServiceLogo, ServiceDrone:
		return true
	default:
		return false
	}
}

// String implements fmt.Stringer.
func (s ServiceType) String() string {
	return string(s)
}
