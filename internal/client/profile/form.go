// Package profile edits the member profile one section at a time.
//
// The form is compared to a baseline captured at load. Only sections that
// differ are sent, one after another, and every server response becomes
// the baseline the next section is compared against.
package profile

import (
	"reflect"
	"strings"

	"github.com/atinyakov/DigitalHouse/internal/models"
)

// Form is the editable copy of every profile section.
type Form struct {
	Basic     models.BasicSection
	Community models.CommunitySection
	Personal  models.PersonalSection
	Matrimony models.MatrimonySection
	Business  models.BusinessSection
	Family    models.FamilySection
}

// FormFromProfile builds a form from a loaded profile. A profile without a
// basic section falls back to its top-level name, masked contacts and date
// of birth.
func FormFromProfile(p models.Profile) Form {
	var f Form
	s := p.Sections
	if s == nil {
		s = &models.ProfileSections{}
	}

	if s.Basic != nil {
		f.Basic = *s.Basic
	} else {
		f.Basic = models.BasicSection{
			FullName:    p.Name,
			Email:       p.PersonalInfo.MaskedEmail,
			Mobile:      strPtr(p.PersonalInfo.MaskedMobile),
			DateOfBirth: p.PersonalInfo.DOB,
			Gender:      p.PersonalInfo.Gender,
		}
	}
	if s.Community != nil {
		f.Community = *s.Community
	}
	if s.Personal != nil {
		f.Personal = *s.Personal
	}
	if s.Matrimony != nil {
		f.Matrimony = *s.Matrimony
	}
	if s.Business != nil {
		f.Business = *s.Business
	}
	if s.Family != nil {
		f.Family = *s.Family
	}
	return f
}

// Change is one section that differs from the baseline, with the payload
// that will be sent for it.
type Change struct {
	Section models.SectionName
	Payload any
}

// Diff lists the sections of current that differ from baseline, in save order.
func Diff(baseline, current Form) []Change {
	var out []Change
	for _, s := range models.Sections {
		if c, ok := diffSection(s, baseline, current); ok {
			out = append(out, c)
		}
	}
	return out
}

func diffSection(s models.SectionName, baseline, current Form) (Change, bool) {
	if s == models.SectionBasic {
		if !basicChanged(baseline.Basic, current.Basic) {
			return Change{}, false
		}
		return Change{Section: s, Payload: basicPayload(current.Basic)}, true
	}
	cur := current.section(s)
	if reflect.DeepEqual(cur, baseline.section(s)) {
		return Change{}, false
	}
	return Change{Section: s, Payload: cur}, true
}

func (f Form) section(s models.SectionName) any {
	switch s {
	case models.SectionBasic:
		return f.Basic
	case models.SectionCommunity:
		return f.Community
	case models.SectionPersonal:
		return f.Personal
	case models.SectionMatrimony:
		return f.Matrimony
	case models.SectionBusiness:
		return f.Business
	case models.SectionFamily:
		return f.Family
	}
	return nil
}

// withSection returns f with section s replaced by the same section of src.
func (f Form) withSection(s models.SectionName, src Form) Form {
	switch s {
	case models.SectionBasic:
		f.Basic = src.Basic
	case models.SectionCommunity:
		f.Community = src.Community
	case models.SectionPersonal:
		f.Personal = src.Personal
	case models.SectionMatrimony:
		f.Matrimony = src.Matrimony
	case models.SectionBusiness:
		f.Business = src.Business
	case models.SectionFamily:
		f.Family = src.Family
	}
	return f
}

// basicChanged compares only the fields a member may edit; email, mobile
// and role are read-only.
func basicChanged(a, b models.BasicSection) bool {
	return strings.TrimSpace(a.FullName) != strings.TrimSpace(b.FullName) ||
		deref(a.DateOfBirth) != deref(b.DateOfBirth) ||
		deref(a.Gender) != deref(b.Gender) ||
		deref(a.NativeDistrict) != deref(b.NativeDistrict)
}

type basicUpdate struct {
	FullName       string  `json:"full_name,omitempty"`
	DateOfBirth    *string `json:"date_of_birth"`
	Gender         *string `json:"gender"`
	NativeDistrict *string `json:"native_district"`
}

func basicPayload(b models.BasicSection) basicUpdate {
	return basicUpdate{
		FullName:       strings.TrimSpace(b.FullName),
		DateOfBirth:    emptyToNil(b.DateOfBirth),
		Gender:         emptyToNil(b.Gender),
		NativeDistrict: emptyToNil(b.NativeDistrict),
	}
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func emptyToNil(s *string) *string {
	if s == nil || strings.TrimSpace(*s) == "" {
		return nil
	}
	v := strings.TrimSpace(*s)
	return &v
}

func strPtr(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
