// Package pipeline assembles stage instances into a linear chain and
// drives their shared lifecycle: ordered initialization, attachment,
// feeding from an input stream, sentinel-driven drain and ordered
// finalization.
//
// All item handoffs go through each stage's bounded queue; the driver
// itself only ever touches the first stage's PlaceWork. Shutdown is strictly
// in-band: the "<END>" token travels the chain like any other item and each
// stage quiesces after forwarding it, so waiting on the stages from first
// to last mirrors the path of the sentinel.
package pipeline
