package core

// Timer classes on STM32F4-style parts:
//
//	Advanced: TIM1, TIM8        4 channels, repetition counter
//	General:  TIM2-5, TIM9-14   1-4 channels
//	Basic:    TIM6, TIM7        no channels

// Class is the capability class of a timer. The set of classes is closed:
// AdvancedClass, GeneralClass and BasicClass.
type Class interface {
	String() string

	// HasRepetitionCounter reports whether the interrupt rate may differ
	// from the counting rate.
	HasRepetitionCounter() bool

	// validateInterrupt checks the interrupt request against the base rate
	// and returns the repetition counter value.
	validateInterrupt(cfg *TimerConfig) (uint32, error)

	// configure runs the class-specific hardware setup.
	configure(s *setup) error
}

type AdvancedClass struct{}
type GeneralClass struct{}
type BasicClass struct{}

func (AdvancedClass) String() string { return "advanced" }
func (GeneralClass) String() string  { return "general" }
func (BasicClass) String() string    { return "basic" }

func (AdvancedClass) HasRepetitionCounter() bool { return true }
func (GeneralClass) HasRepetitionCounter() bool  { return false }
func (BasicClass) HasRepetitionCounter() bool    { return false }

// Capability describes what a given timer number supports
type Capability struct {
	ID          TimerID
	Class       Class
	NumChannels uint8
}

// MaxTimerID is the highest timer number in the table
const MaxTimerID = 14

var capabilityTable = [MaxTimerID]Capability{
	{ID: 1, Class: AdvancedClass{}, NumChannels: 4},
	{ID: 2, Class: GeneralClass{}, NumChannels: 4},
	{ID: 3, Class: GeneralClass{}, NumChannels: 4},
	{ID: 4, Class: GeneralClass{}, NumChannels: 4},
	{ID: 5, Class: GeneralClass{}, NumChannels: 4},
	{ID: 6, Class: BasicClass{}, NumChannels: 0},
	{ID: 7, Class: BasicClass{}, NumChannels: 0},
	{ID: 8, Class: AdvancedClass{}, NumChannels: 4},
	{ID: 9, Class: GeneralClass{}, NumChannels: 2},
	{ID: 10, Class: GeneralClass{}, NumChannels: 1},
	{ID: 11, Class: GeneralClass{}, NumChannels: 1},
	{ID: 12, Class: GeneralClass{}, NumChannels: 2},
	{ID: 13, Class: GeneralClass{}, NumChannels: 1},
	{ID: 14, Class: GeneralClass{}, NumChannels: 1},
}

// ResolveCapability looks up the class and channel count of a timer number
func ResolveCapability(id TimerID) (Capability, error) {
	if id < 1 || id > MaxTimerID {
		return Capability{}, ErrTimerNotFound
	}
	return capabilityTable[id-1], nil
}

// Capabilities returns a copy of the full capability table
func Capabilities() []Capability {
	out := make([]Capability, len(capabilityTable))
	copy(out, capabilityTable[:])
	return out
}
