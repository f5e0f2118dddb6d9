package models

// Kind classifies an application. Service-request kinds amend an approved
// parent; the rest are origin applications.
type Kind string

const (
	KindNewRegistration      Kind = "new_registration"
	KindExistingRCOnboarding Kind = "existing_rc_onboarding"
	KindAddRooms             Kind = "add_rooms"
	KindDeleteRooms          Kind = "delete_rooms"
	KindChangeCategory       Kind = "change_category"
	KindCancelCertificate    Kind = "cancel_certificate"
	KindRenewal              Kind = "renewal"
)

func (k Kind) IsValid() bool {
	switch k {
	case KindNewRegistration, KindExistingRCOnboarding, KindAddRooms, KindDeleteRooms,
		KindChangeCategory, KindCancelCertificate, KindRenewal:
		return true
	}
	return false
}

// IsServiceRequest reports kinds that must carry a parent application.
func (k Kind) IsServiceRequest() bool {
	switch k {
	case KindAddRooms, KindDeleteRooms, KindChangeCategory, KindCancelCertificate, KindRenewal:
		return true
	}
	return false
}

func (k Kind) IsLegacy() bool {
	return k == KindExistingRCOnboarding
}

// ChoosesValidity reports kinds whose owner picks an offered validity tier.
// Amendments inherit the parent's validity, which for onboarded legacy
// certificates follows the attested dates.
func (k Kind) ChoosesValidity() bool {
	return k == KindNewRegistration || k == KindRenewal
}

// ChangesRooms reports kinds whose approval rewrites the parent's room counts.
func (k Kind) ChangesRooms() bool {
	return k == KindAddRooms || k == KindDeleteRooms
}

// Code is the short form used inside application numbers.
func (k Kind) Code() string {
	switch k {
	case KindNewRegistration:
		return "NR"
	case KindExistingRCOnboarding:
		return "HS"
	case KindAddRooms:
		return "AR"
	case KindDeleteRooms:
		return "DR"
	case KindChangeCategory:
		return "CC"
	case KindCancelCertificate:
		return "CN"
	case KindRenewal:
		return "RN"
	}
	return "XX"
}

// Category is the homestay grading tier.
type Category string

const (
	CategoryDiamond Category = "diamond"
	CategoryGold    Category = "gold"
	CategorySilver  Category = "silver"
)

func (c Category) IsValid() bool {
	return c == CategoryDiamond || c == CategoryGold || c == CategorySilver
}
