package models

type Permission int

const (
	PROPERTY_READ Permission = iota
	INGESTION
	INGESTION_JOB_READ_ALL
)

var ROLES_PERMISSIONS = map[Role][]Permission{
	VIEWER: {
		PROPERTY_READ,
	},
	MANAGER: {
		PROPERTY_READ,
		INGESTION,
	},
	ADMIN: {
		PROPERTY_READ,
		INGESTION,
		INGESTION_JOB_READ_ALL,
	},
}

func (p Permission) String() string {
	switch p {
	case PROPERTY_READ:
		return "PROPERTY_READ"
	case INGESTION:
		return "INGESTION"
	case INGESTION_JOB_READ_ALL:
		return "INGESTION_JOB_READ_ALL"
	}
	return "UNKNOWN_PERMISSION"
}
