// Copyright 2025 Canonical Ltd.
// Licensed under the AGPLv3, see LICENCE file for details.

package scenario

import (
	"fmt"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/juju/errors"

	"github.com/canonical/scenario/hooks"
	"github.com/canonical/scenario/state"
)

// EventEnviron returns the JUJU_* environment a unit agent would set
// when dispatching the given event against the given state. The event
// is bound first if it does not already carry its entity, so the same
// scenario that would run cleanly also describes its environment.
func (c *Context) EventEnviron(event *state.Event, st *state.State) (map[string]string, error) {
	if event == nil || st == nil {
		return nil, errors.NotValidf("nil event or state")
	}
	bound, err := event.Bind(st)
	if err != nil {
		return nil, errors.Trace(err)
	}
	env := map[string]string{
		"JUJU_VERSION":       c.jujuVersion,
		"JUJU_UNIT_NAME":     c.UnitName(),
		"_":                  "./dispatch",
		"JUJU_DISPATCH_PATH": "hooks/" + bound.Name(),
		"JUJU_MODEL_NAME":    st.Model.Name,
		"JUJU_MODEL_UUID":    st.Model.UUID,
	}
	if c.charmRoot != "" {
		root, err := filepath.Abs(c.charmRoot)
		if err != nil {
			return nil, errors.Trace(err)
		}
		env["JUJU_CHARM_DIR"] = root
	}
	if action := bound.Action(); action != nil {
		env["JUJU_ACTION_NAME"] = strings.ReplaceAll(action.Name, "_", "-")
		env["JUJU_ACTION_UUID"] = action.ID
	}
	if rel := bound.Relation(); rel != nil {
		c.relationEnviron(env, bound, rel)
	}
	if container := bound.Container(); container != nil {
		env["JUJU_WORKLOAD_NAME"] = container.Name
	}
	if notice := bound.Notice(); notice != nil {
		env["JUJU_NOTICE_ID"] = notice.ID
		env["JUJU_NOTICE_TYPE"] = string(notice.Type)
		env["JUJU_NOTICE_KEY"] = notice.Key
	}
	if check := bound.Check(); check != nil {
		env["JUJU_PEBBLE_CHECK_NAME"] = check.Name
	}
	if storage := bound.Storage(); storage != nil {
		env["JUJU_STORAGE_ID"] = fmt.Sprintf("%s/%d", storage.Name, storage.Index)
	}
	if secret := bound.Secret(); secret != nil {
		env["JUJU_SECRET_ID"] = secret.ID
		env["JUJU_SECRET_LABEL"] = secret.Label
		if revision := bound.SecretRevision(); revision != nil {
			env["JUJU_SECRET_REVISION"] = strconv.Itoa(*revision)
		}
	}
	return env, nil
}

// relationEnviron fills in the relation-scoped variables: endpoint,
// remote application and, where one can be named, the remote and
// departing units. The agent never names a remote unit for created or
// broken events; for the rest, an unset remote unit ID falls back to
// the lowest-numbered remote unit in the relation.
func (c *Context) relationEnviron(env map[string]string, event *state.Event, rel state.RelationView) {
	var remoteApp string
	switch r := rel.(type) {
	case *state.PeerRelation:
		remoteApp = c.appName
	case *state.SubordinateRelation:
		remoteApp = r.RemoteAppName
	case *state.Relation:
		remoteApp = r.RemoteAppName
	}
	env["JUJU_RELATION"] = rel.EndpointName()
	env["JUJU_RELATION_ID"] = strconv.Itoa(rel.RelationID())
	env["JUJU_REMOTE_APP"] = remoteApp

	name := event.Name()
	remoteUnitID := event.RemoteUnitID()
	if remoteUnitID == nil &&
		!strings.HasSuffix(name, hooks.RelationCreatedSuffix) &&
		!strings.HasSuffix(name, hooks.RelationBrokenSuffix) {
		ids := rel.RemoteUnitIDs()
		sort.Ints(ids)
		switch {
		case len(ids) == 1:
			remoteUnitID = &ids[0]
			logger.Infof("remote unit ID unset; using the only remote unit %d. Pass an explicit remote unit ID to be unambiguous.", ids[0])
		case len(ids) > 1:
			remoteUnitID = &ids[0]
			logger.Warningf("remote unit ID unset; picking %d out of %v. Pass an explicit remote unit ID to disambiguate.", ids[0], ids)
		default:
			logger.Warningf("remote unit ID unset and the relation has no remote unit data; leaving JUJU_REMOTE_UNIT unset")
		}
	}
	if remoteUnitID == nil {
		return
	}
	remoteUnit := fmt.Sprintf("%s/%d", remoteApp, *remoteUnitID)
	env["JUJU_REMOTE_UNIT"] = remoteUnit
	if strings.HasSuffix(name, hooks.RelationDepartedSuffix) {
		if departing := event.DepartingUnitID(); departing != nil {
			env["JUJU_DEPARTING_UNIT"] = fmt.Sprintf("%s/%d", remoteApp, *departing)
		} else {
			env["JUJU_DEPARTING_UNIT"] = remoteUnit
		}
	}
}
