// Package profileform implements the multi-section farmer profile form:
// personal details, contact, location, language, device, and farm info.
package profileform

import (
	"fmt"
	"strconv"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"

	"github.com/pdeshmukh/farm-assistant/internal/model"
	"github.com/pdeshmukh/farm-assistant/internal/theme"
)

// ProfileSubmittedMsg is dispatched when the profile form is completed.
type ProfileSubmittedMsg struct {
	Profile model.FarmerProfile
}

// CancelMsg is dispatched when the user cancels the form.
type CancelMsg struct{}

// formBindings holds form field values on the heap so that huh's Value()
// pointers remain valid across Bubble Tea model copies.
type formBindings struct {
	name     string
	age      string
	gender   string
	phone    string
	email    string
	village  string
	district string
	state    string
	pincode  string
	language string
	literacy string
	device   string
	crops    string
	years    string
	acres    string
}

// Model is the Bubble Tea model for the profile form.
type Model struct {
	form   *huh.Form
	fb     *formBindings
	width  int
	height int
}

// New creates a new profile form model.
func New(width, height int) Model {
	return Model{
		fb:     &formBindings{},
		width:  width,
		height: height,
	}
}

// Start initializes the form, pre-filling from an existing profile draft.
func (m *Model) Start(existing *model.FarmerProfile) tea.Cmd {
	*m.fb = formBindings{
		literacy: model.LiteracyMedium,
		device:   model.DeviceSmartphone,
	}
	if existing != nil {
		m.fb.name = existing.Name
		if existing.Age > 0 {
			m.fb.age = strconv.Itoa(existing.Age)
		}
		m.fb.gender = existing.Gender
		m.fb.phone = existing.Contact.Phone
		m.fb.email = existing.Contact.Email
		m.fb.village = existing.Location.Village
		m.fb.district = existing.Location.District
		m.fb.state = existing.Location.State
		m.fb.pincode = existing.Location.Pincode
		m.fb.language = existing.LanguagePreferences.Spoken
		if existing.LanguagePreferences.LiteracyLevel != "" {
			m.fb.literacy = existing.LanguagePreferences.LiteracyLevel
		}
		if existing.DeviceInfo.DeviceType != "" {
			m.fb.device = existing.DeviceInfo.DeviceType
		}
		m.fb.crops = strings.Join(existing.Crops, ", ")
		if existing.FarmingHistory.YearsOfExperience > 0 {
			m.fb.years = strconv.Itoa(existing.FarmingHistory.YearsOfExperience)
		}
		if existing.LandInfo.LandSizeAcres > 0 {
			m.fb.acres = strconv.FormatFloat(
				existing.LandInfo.LandSizeAcres, 'f', -1, 64,
			)
		}
	}
	m.form = m.buildForm()
	return m.form.Init()
}

// Update handles messages for the profile form.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	if m.form == nil {
		return m, nil
	}

	mdl, cmd := m.form.Update(msg)
	if f, ok := mdl.(*huh.Form); ok {
		m.form = f
	}

	if m.form.State == huh.StateCompleted {
		return m, m.handleSubmit()
	}
	if m.form.State == huh.StateAborted {
		return m, func() tea.Msg { return CancelMsg{} }
	}

	return m, cmd
}

// View renders the profile form.
func (m Model) View() string {
	if m.form == nil {
		return ""
	}

	titleStyle := lipgloss.NewStyle().
		Bold(true).
		Foreground(theme.ColorWhite).
		MarginBottom(1)

	content := titleStyle.Render("Farmer Profile") + "\n" + m.form.View()

	return lipgloss.NewStyle().
		Padding(1, 2).
		Render(content)
}

// SetSize updates the form dimensions.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
}

func (m *Model) buildForm() *huh.Form {
	return huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Name").
				Value(&m.fb.name).
				Validate(validateRequired("Name")),
			huh.NewInput().
				Title("Age").
				Placeholder("e.g. 35").
				Value(&m.fb.age).
				Validate(validateOptionalInt("Age")),
			huh.NewSelect[string]().
				Title("Gender").
				Options(
					huh.NewOption("Female", "female"),
					huh.NewOption("Male", "male"),
					huh.NewOption("Other", "other"),
					huh.NewOption("Prefer not to say", ""),
				).
				Value(&m.fb.gender),
		).Title("Personal"),
		huh.NewGroup(
			huh.NewInput().
				Title("Phone").
				Value(&m.fb.phone),
			huh.NewInput().
				Title("Email").
				Value(&m.fb.email),
		).Title("Contact"),
		huh.NewGroup(
			huh.NewInput().
				Title("Village").
				Value(&m.fb.village),
			huh.NewInput().
				Title("District").
				Value(&m.fb.district),
			huh.NewInput().
				Title("State").
				Value(&m.fb.state),
			huh.NewInput().
				Title("Pincode").
				Value(&m.fb.pincode),
		).Title("Location"),
		huh.NewGroup(
			huh.NewInput().
				Title("Spoken language").
				Placeholder("e.g. Kannada").
				Value(&m.fb.language),
			huh.NewSelect[string]().
				Title("Reading comfort").
				Options(
					huh.NewOption("Low", model.LiteracyLow),
					huh.NewOption("Medium", model.LiteracyMedium),
					huh.NewOption("High", model.LiteracyHigh),
				).
				Value(&m.fb.literacy),
			huh.NewSelect[string]().
				Title("Device").
				Options(
					huh.NewOption("Smartphone", model.DeviceSmartphone),
					huh.NewOption("Feature phone", model.DeviceFeaturePhone),
				).
				Value(&m.fb.device),
		).Title("Preferences"),
		huh.NewGroup(
			huh.NewInput().
				Title("Crops").
				Placeholder("Comma separated, e.g. Tomato, Maize").
				Value(&m.fb.crops),
			huh.NewInput().
				Title("Years of farming experience").
				Value(&m.fb.years).
				Validate(validateOptionalInt("Years of farming experience")),
			huh.NewInput().
				Title("Land size (acres)").
				Value(&m.fb.acres).
				Validate(validateOptionalFloat("Land size")),
		).Title("Farm"),
	).WithWidth(m.formWidth()).WithHeight(m.formHeight())
}

func (m Model) handleSubmit() tea.Cmd {
	fb := *m.fb

	profile := model.FarmerProfile{
		Name:   strings.TrimSpace(fb.name),
		Gender: fb.gender,
		Contact: model.Contact{
			Phone: strings.TrimSpace(fb.phone),
			Email: strings.TrimSpace(fb.email),
		},
		Location: model.Location{
			Village:  strings.TrimSpace(fb.village),
			District: strings.TrimSpace(fb.district),
			State:    strings.TrimSpace(fb.state),
			Pincode:  strings.TrimSpace(fb.pincode),
		},
		LanguagePreferences: model.LanguagePreferences{
			Spoken:        strings.TrimSpace(fb.language),
			LiteracyLevel: fb.literacy,
		},
		DeviceInfo: model.DeviceInfo{DeviceType: fb.device},
	}

	if age, err := strconv.Atoi(strings.TrimSpace(fb.age)); err == nil {
		profile.Age = age
	}
	if years, err := strconv.Atoi(strings.TrimSpace(fb.years)); err == nil {
		profile.FarmingHistory.YearsOfExperience = years
	}
	if acres, err := strconv.ParseFloat(strings.TrimSpace(fb.acres), 64); err == nil {
		profile.LandInfo.LandSizeAcres = acres
	}

	for _, crop := range strings.Split(fb.crops, ",") {
		if c := strings.TrimSpace(crop); c != "" {
			profile.Crops = append(profile.Crops, c)
		}
	}

	return func() tea.Msg {
		return ProfileSubmittedMsg{Profile: profile}
	}
}

func (m Model) formWidth() int {
	w := m.width - 4
	if w < 40 {
		w = 40
	}
	if w > 100 {
		w = 100
	}
	return w
}

func (m Model) formHeight() int {
	h := m.height - 4
	if h < 10 {
		h = 10
	}
	return h
}

func validateRequired(fieldName string) func(string) error {
	return func(s string) error {
		if strings.TrimSpace(s) == "" {
			return fmt.Errorf("%s is required", fieldName)
		}
		return nil
	}
}

func validateOptionalInt(fieldName string) func(string) error {
	return func(s string) error {
		s = strings.TrimSpace(s)
		if s == "" {
			return nil
		}
		if _, err := strconv.Atoi(s); err != nil {
			return fmt.Errorf("%s must be a whole number", fieldName)
		}
		return nil
	}
}

func validateOptionalFloat(fieldName string) func(string) error {
	return func(s string) error {
		s = strings.TrimSpace(s)
		if s == "" {
			return nil
		}
		if _, err := strconv.ParseFloat(s, 64); err != nil {
			return fmt.Errorf("%s must be a number", fieldName)
		}
		return nil
	}
}
