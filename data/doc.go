/*
Package data contains the safety data structures that are used throughout the
project: the data a safety source reports ([SourceData]), the aggregated view
the center presents ([CenterData]), refresh and telemetry records, and the
protobuf wire encoding for all of them.
*/
package data
