// Copyright 2025 Canonical Ltd.
// Licensed under the AGPLv3, see LICENCE file for details.

/*
Package core holds pure concepts shared by the harness packages: ID
sequencing and status modelling. Code here must stay free of I/O and
of any dependency on the entity model; subpackages of core may import
each other but never any other package of this module.
*/
package core
