package orchestrator

import "fmt"

// Phase names one step of population setup or of a generation.
type Phase string

const (
	PhaseWriteParameters Phase = "write_parameters"
	PhaseDeploy          Phase = "deploy"
	PhaseEcoregulate     Phase = "ecoregulate"
	PhaseUpdateEcology   Phase = "update_ecology"
	PhaseUpdateLocal     Phase = "update_local"
	PhaseInterpret       Phase = "interpret_chromosome"
	PhaseReport          Phase = "report_generation"
	PhaseMovement        Phase = "organism_movement"
	PhaseLocation        Phase = "organism_location"
	PhaseCellReport      Phase = "report"
	PhaseBury            Phase = "bury_world"
	PhaseClose           Phase = "close_results"
)

// PhaseError identifies where a run was aborted. Generation is zero for the
// phases outside the generation loop.
type PhaseError struct {
	Population string
	Generation int
	Phase      Phase
	Err        error
}

func (e *PhaseError) Error() string {
	if e.Generation == 0 {
		return fmt.Sprintf("population %s: %s: %v", e.Population, e.Phase, e.Err)
	}
	return fmt.Sprintf("population %s generation %d: %s: %v", e.Population, e.Generation, e.Phase, e.Err)
}

func (e *PhaseError) Unwrap() error {
	return e.Err
}
