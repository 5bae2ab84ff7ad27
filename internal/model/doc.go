// Package model holds the live view of every sensed entity: the most
// recent value of each named attribute, kept per entity.
//
// A Collection is built once from the registry's sensed entities and never
// gains or loses models afterwards. Readings are applied with
// SensedEntityModel.Update, which always overwrites; ordering is whatever
// order the pipeline delivers readings in.
package model
