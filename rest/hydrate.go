package rest

import "encoding/json"

// Envelope types with a typed hydration
const (
	TypeDomains      = "domains"
	TypeDomain       = "domain"
	TypeApplications = "applications"
	TypeApplication  = "application"
	TypeCartridges   = "cartridges"
	TypeCartridge    = "cartridge"
	TypeUser         = "user"
	TypeKeys         = "keys"
	TypeKey          = "key"
	// TypeLinks is returned by the API root; it has no hydration and passes through raw
	TypeLinks = "links"
)

// Hydrate converts envelope data into domain objects according to its type.
//
// Sequence types yield slices in input order, singular types yield a pointer, and
// unknown types return data unchanged as a json.RawMessage.
func Hydrate(kind string, data json.RawMessage) (any, error) {
	switch kind {
	case TypeDomains:
		return decodeList(data, newDomain)
	case TypeDomain:
		return newDomain(data)
	case TypeApplications:
		return decodeList(data, newApplication)
	case TypeApplication:
		return newApplication(data)
	case TypeCartridges:
		return decodeList(data, newCartridge)
	case TypeCartridge:
		return newCartridge(data)
	case TypeUser:
		return newUser(data)
	case TypeKeys:
		return decodeList(data, newKey)
	case TypeKey:
		return newKey(data)
	default:
		return data, nil
	}
}
