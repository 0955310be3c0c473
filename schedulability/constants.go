// vi: sw=4 ts=4:

/*

	Mnemonic:	constants
	Abstract:	Documents the one genuinely ambiguous unit convention left
				open by spec §9 (Open Question 3): how ci, a millisecond
				duration, turns into a bit count for Link.TransmissionDelay.
				original_source/schedulability/analysis.py calls
				link.get_transmission_delay(flow.ci * 1000) without further
				comment; we follow that literally rather than invent a
				cleaner physical interpretation, and name the constant here
				so the tests in schedulability_test.go assert against it
				explicitly instead of a magic number.
	Date:		2026

*/

package schedulability

// BitsPerCiMillisecond is the scale factor applied to a flow's ci (in
// milliseconds) before it is handed to Link.TransmissionDelay as a payload
// bit count.
const BitsPerCiMillisecond = 1000

// ConvergenceEpsilon is the Holistic Approach fixed-point stopping
// tolerance, in milliseconds.
const ConvergenceEpsilon = 0.001
