package models

import "time"

// SectionName identifies one independently editable profile sub-document.
type SectionName string

const (
	SectionBasic     SectionName = "basic"
	SectionCommunity SectionName = "community"
	SectionPersonal  SectionName = "personal"
	SectionMatrimony SectionName = "matrimony"
	SectionBusiness  SectionName = "business"
	SectionFamily    SectionName = "family"
)

// Sections lists every profile section in save order.
var Sections = []SectionName{
	SectionBasic, SectionCommunity, SectionPersonal,
	SectionMatrimony, SectionBusiness, SectionFamily,
}

// Restricted reports whether edits to the section go through admin review.
func (s SectionName) Restricted() bool {
	return s == SectionMatrimony || s == SectionBusiness
}

// Valid reports whether s names a known section.
func (s SectionName) Valid() bool {
	for _, n := range Sections {
		if n == s {
			return true
		}
	}
	return false
}

// BasicSection is the account section; the API uses snake_case here.
type BasicSection struct {
	FullName       string  `json:"full_name"`
	DateOfBirth    *string `json:"date_of_birth"`
	Email          string  `json:"email"`
	Mobile         *string `json:"mobile"`
	Gender         *string `json:"gender"`
	NativeDistrict *string `json:"native_district"`
	Role           *string `json:"role"`
}

// CommunitySection describes the member's community roots.
type CommunitySection struct {
	Kulam         *string `json:"kulam"`
	KulaDeivam    *string `json:"kulaDeivam"`
	NativeVillage *string `json:"nativeVillage"`
	NativeTaluk   *string `json:"nativeTaluk"`
}

// PersonalSection holds personal details and social links.
type PersonalSection struct {
	CurrentLocation *string `json:"currentLocation"`
	Occupation      *string `json:"occupation"`
	Instagram       *string `json:"instagram"`
	Facebook        *string `json:"facebook"`
	Linkedin        *string `json:"linkedin"`
	Hobbies         *string `json:"hobbies"`
	FatherName      *string `json:"fatherName"`
	MaritalStatus   *string `json:"maritalStatus"`
}

// MatrimonySection is reviewed by an admin before it becomes visible.
type MatrimonySection struct {
	MatrimonyProfileActive bool    `json:"matrimonyProfileActive"`
	LookingFor             *string `json:"lookingFor"`
	Education              *string `json:"education"`
	MaritalStatus          *string `json:"maritalStatus"`
	Rashi                  *string `json:"rashi"`
	Nakshatram             *string `json:"nakshatram"`
	Dosham                 *string `json:"dosham"`
	FamilyType             *string `json:"familyType"`
	FamilyStatus           *string `json:"familyStatus"`
	MotherName             *string `json:"motherName"`
	FatherOccupation       *string `json:"fatherOccupation"`
	NumberOfSiblings       *int    `json:"numberOfSiblings"`
	PartnerPreferences     *string `json:"partnerPreferences"`
	HoroscopeDocumentURL   *string `json:"horoscopeDocumentUrl"`
}

// BusinessSection is reviewed by an admin before it becomes visible.
type BusinessSection struct {
	BusinessProfileActive bool    `json:"businessProfileActive"`
	BusinessName          *string `json:"businessName"`
	BusinessType          *string `json:"businessType"`
	BusinessDescription   *string `json:"businessDescription"`
	BusinessAddress       *string `json:"businessAddress"`
	BusinessPhone         *string `json:"businessPhone"`
	BusinessWebsite       *string `json:"businessWebsite"`
}

// FamilySection links up to five family member accounts.
type FamilySection struct {
	FamilyMemberID1 *int64 `json:"familyMemberId1"`
	FamilyMemberID2 *int64 `json:"familyMemberId2"`
	FamilyMemberID3 *int64 `json:"familyMemberId3"`
	FamilyMemberID4 *int64 `json:"familyMemberId4"`
	FamilyMemberID5 *int64 `json:"familyMemberId5"`
}

// ProfileSections carries the optional section payloads of a profile.
type ProfileSections struct {
	Basic     *BasicSection     `json:"basic"`
	Community *CommunitySection `json:"community"`
	Personal  *PersonalSection  `json:"personal"`
	Matrimony *MatrimonySection `json:"matrimony"`
	Business  *BusinessSection  `json:"business"`
	Family    *FamilySection    `json:"family"`
}

// ReviewState is the admin review state of a restricted section.
type ReviewState string

const (
	ReviewPending  ReviewState = "PENDING"
	ReviewApproved ReviewState = "APPROVED"
	ReviewRejected ReviewState = "REJECTED"
)

// ReviewStatus is the latest review of a restricted section.
type ReviewStatus struct {
	Status       ReviewState `json:"status"`
	AdminRemarks *string     `json:"admin_remarks,omitempty"`
}

// PersonalInfo is the read-only personal block; email and mobile are masked.
type PersonalInfo struct {
	MaskedMobile string  `json:"masked_mobile"`
	MaskedEmail  string  `json:"masked_email"`
	Gender       *string `json:"gender"`
	DOB          *string `json:"dob"`
	BloodGroup   *string `json:"blood_group"`
	City         *string `json:"city"`
	District     *string `json:"district"`
}

// ProfessionalInfo is the read-only professional block.
type ProfessionalInfo struct {
	Education    *string `json:"education"`
	JobTitle     *string `json:"job_title"`
	CompanyName  *string `json:"company_name"`
	WorkLocation *string `json:"work_location"`
	Skills       *string `json:"skills"`
}

// ProfileStats are the profile counters.
type ProfileStats struct {
	TotalPosts       int `json:"total_posts"`
	JobsPosted       int `json:"jobs_posted"`
	MarketplaceItems int `json:"marketplace_items"`
	HelpRequests     int `json:"help_requests"`
}

// Profile is the signed-in member's full profile.
type Profile struct {
	ID                   int64            `json:"id"`
	Name                 string           `json:"name"`
	ProfileImage         *string          `json:"profile_image"`
	Verified             bool             `json:"verified"`
	MemberSince          string           `json:"member_since"`
	PersonalInfo         PersonalInfo     `json:"personal_info"`
	ProfessionalInfo     ProfessionalInfo `json:"professional_info"`
	Stats                ProfileStats     `json:"stats"`
	CompletionPercentage *int             `json:"completion_percentage,omitempty"`
	ShowMatrimony        *bool            `json:"show_matrimony,omitempty"`
	ShowBusiness         *bool            `json:"show_business,omitempty"`
	Sections             *ProfileSections `json:"sections,omitempty"`
	PendingMatrimony     *ReviewStatus    `json:"pending_matrimony,omitempty"`
	PendingBusiness      *ReviewStatus    `json:"pending_business,omitempty"`
}

// Review returns the review status of a restricted section, or nil.
func (p *Profile) Review(section SectionName) *ReviewStatus {
	switch section {
	case SectionMatrimony:
		return p.PendingMatrimony
	case SectionBusiness:
		return p.PendingBusiness
	}
	return nil
}

// ProfileUpdateRequest is the payload of PUT /profile/me.
type ProfileUpdateRequest struct {
	ProfileImage *string `json:"profile_image,omitempty"`
	City         *string `json:"city,omitempty"`
	District     *string `json:"district,omitempty"`
	Education    *string `json:"education,omitempty"`
	JobTitle     *string `json:"job_title,omitempty"`
	CompanyName  *string `json:"company_name,omitempty"`
	WorkLocation *string `json:"work_location,omitempty"`
	Skills       *string `json:"skills,omitempty"`
}

// ActivityTab selects a list on the profile activity tabs.
type ActivityTab string

const (
	ActivityMine  ActivityTab = "my"
	ActivitySaved ActivityTab = "saved"
	ActivityLiked ActivityTab = "liked"
)

// Valid reports whether t is a known tab.
func (t ActivityTab) Valid() bool {
	return t == ActivityMine || t == ActivitySaved || t == ActivityLiked
}

// ActivityItem is one row of a profile activity tab.
type ActivityItem struct {
	PostID    int64     `json:"postId"`
	Title     string    `json:"title"`
	PostType  PostType  `json:"postType"`
	CreatedAt time.Time `json:"createdAt"`
	Status    string    `json:"status"`
}

// ActivityPage is one page of a profile activity tab.
type ActivityPage struct {
	Items []ActivityItem
	Page  int
	Limit int
	Total int
}
