// Copyright 2025 Canonical Ltd.
// Licensed under the AGPLv3, see LICENCE file for details.

// Package consistency validates that a (State, Event, charm spec, juju
// version) combination is one juju could actually produce. A scenario
// is inconsistent when it contradicts the juju model: juju guarantees,
// for example, that config-get only ever returns keys declared in
// config.yaml, so a state carrying undeclared config keys can never
// occur and testing against it proves nothing.
//
// Check runs every rule and reports all violations at once. Findings
// that merely look suspicious are logged as warnings instead of
// failing the check.
package consistency

import (
	"fmt"
	"reflect"
	"regexp"
	"strings"

	"github.com/juju/collections/set"
	"github.com/juju/errors"
	"github.com/juju/loggo/v2"
	"github.com/juju/version/v2"

	"github.com/canonical/scenario/charm"
	"github.com/canonical/scenario/hooks"
	"github.com/canonical/scenario/state"
)

var logger = loggo.GetLogger("scenario.consistency")

// ErrInconsistentScenario is reported when the combination of state,
// event and charm spec contradicts the juju model.
const ErrInconsistentScenario = errors.ConstError("inconsistent scenario")

// secretURIPattern is the shape of the secret IDs juju hands out.
var secretURIPattern = regexp.MustCompile(`^secret:[a-z0-9]{20}$`)

// checkArgs carries the triple under validation plus the simulated
// juju version, parsed once.
type checkArgs struct {
	state   *state.State
	event   *state.Event
	spec    charm.Spec
	version string
	major   int
	minor   int
}

// results is the outcome of one rule group.
type results struct {
	errors   []string
	warnings []string
}

type checkFunc func(checkArgs) results

// Check validates the combination of a state, an event, a charm spec
// and a juju version. It returns an error satisfying
// ErrInconsistentScenario carrying every violated rule, or nil when
// the scenario is plausible. Suspicious but tolerable findings are
// logged as warnings.
func Check(st *state.State, ev *state.Event, spec charm.Spec, jujuVersion string) error {
	major, minor, err := parseJujuVersion(jujuVersion)
	if err != nil {
		return errors.Trace(err)
	}
	args := checkArgs{
		state:   st,
		event:   ev,
		spec:    spec,
		version: jujuVersion,
		major:   major,
		minor:   minor,
	}

	var errs, warnings []string
	for _, check := range []checkFunc{
		checkContainers,
		checkConfig,
		checkResources,
		checkEvent,
		checkSecrets,
		checkStorages,
		checkRelations,
		checkNetworks,
		checkStoredState,
	} {
		res := check(args)
		errs = append(errs, res.errors...)
		warnings = append(warnings, res.warnings...)
	}

	if len(errs) > 0 {
		return fmt.Errorf("inconsistent scenario; the following errors were found:\n%s%w",
			strings.Join(errs, "\n"), errors.Hide(ErrInconsistentScenario))
	}
	if len(warnings) > 0 {
		logger.Warningf("this scenario is probably inconsistent; double check, and ignore this warning if you are sure:\n%s",
			strings.Join(warnings, "\n"))
	}
	return nil
}

// parseJujuVersion extracts (major, minor) from the forms juju
// versions appear in: "3", "3.4", "3.4.2".
func parseJujuVersion(v string) (int, int, error) {
	major, minor, err := version.ParseMajorMinor(v)
	if err == nil {
		if minor < 0 {
			minor = 0
		}
		return major, minor, nil
	}
	parsed, err := version.Parse(v)
	if err != nil {
		return 0, 0, errors.NotValidf("juju version %q", v)
	}
	return parsed.Major, parsed.Minor, nil
}

func checkContainers(args checkArgs) results {
	var res results

	metaContainers := set.NewStrings()
	if args.spec.Meta != nil {
		for name := range args.spec.Meta.Containers {
			metaContainers.Add(hooks.NormalizeName(name))
		}
	}
	stateContainers := set.NewStrings()
	counts := map[string]int{}
	for _, container := range args.state.Containers {
		name := hooks.NormalizeName(container.Name)
		stateContainers.Add(name)
		counts[name]++
	}

	// A container declared in metadata may legitimately be missing
	// from the state, but a workload event needs its container both
	// declared and present.
	if args.event.Kind().IsWorkload() {
		prefix := args.event.Prefix()
		if !metaContainers.Contains(prefix) {
			res.errors = append(res.errors, fmt.Sprintf(
				"workload event %q concerns container %q, but that container is not declared in the charm metadata",
				args.event.Name(), prefix))
		}
		if !stateContainers.Contains(prefix) {
			res.errors = append(res.errors, fmt.Sprintf(
				"workload event %q concerns container %q, but that container is not present in the state",
				args.event.Name(), prefix))
		}
	}

	if missing := stateContainers.Difference(metaContainers); !missing.IsEmpty() {
		res.errors = append(res.errors, fmt.Sprintf(
			"containers %v in state but not declared in the charm metadata",
			missing.SortedValues()))
	}
	for _, name := range stateContainers.SortedValues() {
		if counts[name] > 1 {
			res.errors = append(res.errors, fmt.Sprintf(
				"duplicate container name in state: %q", name))
		}
	}
	return res
}

func checkConfig(args checkArgs) results {
	var res results

	var options map[string]charm.Option
	if args.spec.Config != nil {
		options = args.spec.Config.Options
	}
	keys := set.NewStrings()
	for key := range args.state.Config {
		keys.Add(key)
	}
	for _, key := range keys.SortedValues() {
		value := args.state.Config[key]
		option, ok := options[key]
		if !ok {
			res.errors = append(res.errors, fmt.Sprintf(
				"config option %q in state but not declared in config.yaml", key))
			continue
		}
		switch option.Type {
		case "":
			res.errors = append(res.errors, fmt.Sprintf(
				"config option %q declared without a type", key))
		case "secret":
			if args.major < 3 || (args.major == 3 && args.minor < 4) {
				res.errors = append(res.errors, fmt.Sprintf(
					"secret-typed config option %q requires juju 3.4 or later, got %s",
					key, args.version))
				continue
			}
			uri, ok := value.(string)
			if !ok || !secretURIPattern.MatchString(uri) {
				res.errors = append(res.errors, fmt.Sprintf(
					"config option %q is typed secret and must hold a secret URI of the form secret:<20 lowercase alphanumerics>, got %v",
					key, value))
			}
		case "string", "int", "float", "boolean":
			if !configValueMatches(option.Type, value) {
				res.errors = append(res.errors, fmt.Sprintf(
					"config option %q should be of type %s, got %T", key, option.Type, value))
			}
		default:
			res.errors = append(res.errors, fmt.Sprintf(
				"config option %q has unknown type %q", key, option.Type))
		}
	}
	return res
}

func configValueMatches(typeName string, value interface{}) bool {
	switch typeName {
	case "string":
		_, ok := value.(string)
		return ok
	case "int":
		switch value.(type) {
		case int, int64:
			return true
		}
		return false
	case "float":
		switch value.(type) {
		case float32, float64:
			return true
		}
		return false
	case "boolean":
		_, ok := value.(bool)
		return ok
	}
	return false
}

func checkResources(args checkArgs) results {
	var res results

	declared := set.NewStrings()
	if args.spec.Meta != nil {
		for name := range args.spec.Meta.Resources {
			declared.Add(name)
		}
	}
	inState := set.NewStrings()
	for name := range args.state.Resources {
		inState.Add(name)
	}
	if missing := inState.Difference(declared); !missing.IsEmpty() {
		res.errors = append(res.errors, fmt.Sprintf(
			"resources %v in state but not declared in metadata.yaml",
			missing.SortedValues()))
	}
	return res
}

func checkEvent(args checkArgs) results {
	var res results
	switch {
	case args.event.Kind() == hooks.Custom:
		res.warnings = append(res.warnings,
			"this is a custom event; if its name looks like a builtin one (e.g. a relation event, or a workload event), you might get false-negative consistency checks")
	case args.event.Kind().IsRelation():
		checkRelationEvent(args, &res)
	case args.event.Kind().IsWorkload():
		checkWorkloadEvent(args, &res)
	case args.event.Kind().IsAction():
		checkActionEvent(args, &res)
	case args.event.Kind().IsStorage():
		checkStorageEvent(args, &res)
	}
	return res
}

func checkRelationEvent(args checkArgs, res *results) {
	ev := args.event
	rel := ev.Relation()
	if rel == nil {
		res.errors = append(res.errors,
			"cannot construct a relation event without the relation instance")
		return
	}
	if !strings.HasPrefix(ev.Name(), hooks.NormalizeName(rel.EndpointName())) {
		res.errors = append(res.errors, fmt.Sprintf(
			"relation event %q should start with the relation endpoint name %q",
			ev.Name(), rel.EndpointName()))
	}
	for _, other := range args.state.Relations {
		if other.RelationID() == rel.RelationID() {
			return
		}
	}
	res.errors = append(res.errors, fmt.Sprintf(
		"relation event %q refers to relation %d, which is not in the state",
		ev.Name(), rel.RelationID()))
}

func checkWorkloadEvent(args checkArgs, res *results) {
	ev := args.event
	container := ev.Container()
	if container == nil {
		res.errors = append(res.errors,
			"cannot construct a workload event without the container instance")
		return
	}
	if !strings.HasPrefix(ev.Name(), hooks.NormalizeName(container.Name)) {
		res.errors = append(res.errors, fmt.Sprintf(
			"workload event %q should start with the container name %q",
			ev.Name(), container.Name))
	}
}

func checkActionEvent(args checkArgs, res *results) {
	ev := args.event
	action := ev.Action()
	if action == nil {
		res.errors = append(res.errors,
			"cannot construct an action event without the action instance")
		return
	}
	if !strings.HasPrefix(ev.Name(), hooks.NormalizeName(action.Name)) {
		res.errors = append(res.errors, fmt.Sprintf(
			"action event %q should start with the action name %q",
			ev.Name(), action.Name))
	}
	var specs map[string]charm.ActionSpec
	if args.spec.Actions != nil {
		specs = args.spec.Actions.Specs
	}
	declared, ok := specs[action.Name]
	if !ok {
		res.errors = append(res.errors, fmt.Sprintf(
			"action event %q refers to action %q, which is not declared in the charm metadata (actions.yaml)",
			ev.Name(), action.Name))
		return
	}
	checkActionParams(action, declared, res)
}

func checkActionParams(action *state.Action, declared charm.ActionSpec, res *results) {
	expected := map[string]string{}
	declaredNames := set.NewStrings()
	for name := range declared.Params {
		declaredNames.Add(name)
	}
	for _, name := range declaredNames.SortedValues() {
		param := declared.Params[name]
		if param.Type == "" {
			res.errors = append(res.errors, fmt.Sprintf(
				"action parameter %q has no type", name))
			continue
		}
		if !recognizedParamType(param.Type) {
			res.errors = append(res.errors, fmt.Sprintf(
				"action parameter %q has unknown type %q", name, param.Type))
			continue
		}
		expected[name] = param.Type
	}

	provided := set.NewStrings()
	for name := range action.Params {
		provided.Add(name)
	}
	for _, name := range provided.SortedValues() {
		value := action.Params[name]
		typeName, ok := expected[name]
		if !ok {
			res.errors = append(res.errors, fmt.Sprintf(
				"param %q is not a valid parameter for action %q: missing from the action specification",
				name, action.Name))
			continue
		}
		if !paramValueMatches(typeName, value) {
			res.errors = append(res.errors, fmt.Sprintf(
				"param %q is of type %T, expecting %s", name, value, typeName))
		}
	}
}

func recognizedParamType(typeName string) bool {
	switch typeName {
	case "string", "boolean", "integer", "number", "array", "object":
		return true
	}
	return false
}

func paramValueMatches(typeName string, value interface{}) bool {
	v := reflect.ValueOf(value)
	switch typeName {
	case "string":
		return v.Kind() == reflect.String
	case "boolean":
		return v.Kind() == reflect.Bool
	case "integer":
		return isIntegerKind(v.Kind())
	case "number":
		return isIntegerKind(v.Kind()) || v.Kind() == reflect.Float32 || v.Kind() == reflect.Float64
	case "array":
		// juju passes arrays, but a bare string is accepted too.
		return v.Kind() == reflect.Slice || v.Kind() == reflect.Array || v.Kind() == reflect.String
	case "object":
		return v.Kind() == reflect.Map
	}
	return false
}

func isIntegerKind(k reflect.Kind) bool {
	switch k {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return true
	}
	return false
}

func checkStorageEvent(args checkArgs, res *results) {
	ev := args.event
	storage := ev.Storage()
	if storage == nil {
		res.errors = append(res.errors,
			"cannot construct a storage event without the storage instance")
		return
	}
	if !strings.HasPrefix(ev.Name(), hooks.NormalizeName(storage.Name)) {
		res.errors = append(res.errors, fmt.Sprintf(
			"storage event %q should start with the storage name %q",
			ev.Name(), storage.Name))
		return
	}
	declared := false
	if args.spec.Meta != nil {
		_, declared = args.spec.Meta.Storage[storage.Name]
	}
	if !declared {
		res.errors = append(res.errors, fmt.Sprintf(
			"storage event %q refers to storage %q, which is not declared in the charm metadata under storage",
			ev.Name(), storage.Name))
		return
	}
	for _, other := range args.state.Storages {
		if other.Name == storage.Name && other.Index == storage.Index {
			return
		}
	}
	res.errors = append(res.errors, fmt.Sprintf(
		"storage event %q refers to storage %s/%d, which is not in the state",
		ev.Name(), storage.Name, storage.Index))
}

func checkSecrets(args checkArgs) results {
	var res results

	secretEvent := args.event.Kind().IsSecret()
	if secretEvent {
		secret := args.event.Secret()
		if secret == nil {
			res.errors = append(res.errors,
				"cannot construct a secret event without the secret instance")
		} else {
			found := false
			for _, other := range args.state.Secrets {
				if other.ID == secret.ID {
					found = true
					break
				}
			}
			if !found {
				res.errors = append(res.errors, fmt.Sprintf(
					"secret event %q refers to secret %q, which is not in the state",
					args.event.Name(), secret.ID))
			}
		}
	}

	if (len(args.state.Secrets) > 0 || secretEvent) && args.major < 3 {
		res.errors = append(res.errors, fmt.Sprintf(
			"secrets are not supported in juju version %q; use juju 3.0 or later",
			args.version))
	}
	return res
}

func checkStorages(args checkArgs) results {
	var res results

	declared := set.NewStrings()
	if args.spec.Meta != nil {
		for name := range args.spec.Meta.Storage {
			declared.Add(name)
		}
	}
	inState := set.NewStrings()
	for _, storage := range args.state.Storages {
		inState.Add(storage.Name)
	}
	if missing := inState.Difference(declared); !missing.IsEmpty() {
		res.errors = append(res.errors, fmt.Sprintf(
			"storages %v in state but not declared in metadata.yaml",
			missing.SortedValues()))
	}

	type instance struct {
		name  string
		index int
	}
	seen := map[instance]bool{}
	for _, storage := range args.state.Storages {
		key := instance{storage.Name, storage.Index}
		if seen[key] {
			res.errors = append(res.errors, fmt.Sprintf(
				"duplicate storage in state: %q with index %d occurs multiple times",
				storage.Name, storage.Index))
		}
		seen[key] = true
	}
	return res
}

func checkRelations(args checkArgs) results {
	var res results

	var provides, requires, peers map[string]charm.Relation
	if args.spec.Meta != nil {
		provides = args.spec.Meta.Provides
		requires = args.spec.Meta.Requires
		peers = args.spec.Meta.Peers
	}

	counts := map[string]int{}
	endpoints := set.NewStrings()
	for _, section := range []map[string]charm.Relation{provides, requires, peers} {
		for name := range section {
			counts[name]++
			endpoints.Add(name)
		}
	}
	for _, name := range endpoints.SortedValues() {
		if counts[name] > 1 {
			res.errors = append(res.errors, fmt.Sprintf(
				"duplicate endpoint name %q in metadata", name))
		}
	}

	seenIDs := set.NewInts()
	for _, rel := range args.state.Relations {
		if seenIDs.Contains(rel.RelationID()) {
			res.errors = append(res.errors, fmt.Sprintf(
				"duplicate relation ID: %d is claimed by multiple relation instances",
				rel.RelationID()))
		}
		seenIDs.Add(rel.RelationID())

		endpoint := rel.EndpointName()
		declared, ok := args.spec.Relation(endpoint)
		if !ok {
			res.errors = append(res.errors, fmt.Sprintf(
				"relation endpoint %q is not declared in metadata", endpoint))
			continue
		}
		_, isPeer := rel.(*state.PeerRelation)
		if declared.Role == charm.RolePeer {
			if !isPeer {
				res.errors = append(res.errors, fmt.Sprintf(
					"endpoint %q is a peer relation; expecting a PeerRelation instance, got %T",
					endpoint, rel))
			}
			continue
		}
		if isPeer {
			res.errors = append(res.errors, fmt.Sprintf(
				"endpoint %q is not a peer relation endpoint; got a PeerRelation instance",
				endpoint))
			continue
		}
		expectedSub := declared.Scope == charm.ScopeContainer
		_, isSub := rel.(*state.SubordinateRelation)
		if isSub && !expectedSub {
			res.errors = append(res.errors, fmt.Sprintf(
				"endpoint %q is not a subordinate relation endpoint; expecting a Relation instance, got %T",
				endpoint, rel))
		}
		if expectedSub && !isSub {
			res.errors = append(res.errors, fmt.Sprintf(
				"endpoint %q is a subordinate relation endpoint; expecting a SubordinateRelation instance, got %T",
				endpoint, rel))
		}
	}
	return res
}

func checkNetworks(args checkArgs) results {
	var res results

	extraBindings := set.NewStrings()
	if args.spec.Meta != nil {
		for name := range args.spec.Meta.ExtraBindings {
			extraBindings.Add(name)
		}
	}
	endpoints := set.NewStrings()
	bindable := extraBindings.Union(nil)
	for _, rel := range args.spec.AllRelations() {
		endpoints.Add(rel.Name)
		// Subordinate endpoints are not bindable.
		if rel.Scope != charm.ScopeContainer {
			bindable.Add(rel.Name)
		}
	}

	inState := set.NewStrings()
	for name := range args.state.Networks {
		inState.Add(name)
	}
	if missing := inState.Difference(bindable); !missing.IsEmpty() {
		res.errors = append(res.errors, fmt.Sprintf(
			"network bindings %v in state but not declared in metadata.yaml",
			missing.SortedValues()))
	}
	if collisions := endpoints.Intersection(extraBindings); !collisions.IsEmpty() {
		res.errors = append(res.errors, fmt.Sprintf(
			"extra bindings and relation endpoints cannot share a name: %v",
			collisions.SortedValues()))
	}
	return res
}

func checkStoredState(args checkArgs) results {
	var res results

	seen := map[string]set.Strings{}
	for _, stored := range args.state.StoredStates {
		names, ok := seen[stored.OwnerPath]
		if !ok {
			names = set.NewStrings()
			seen[stored.OwnerPath] = names
		}
		if names.Contains(stored.Name) {
			res.errors = append(res.errors, fmt.Sprintf(
				"owner %q has multiple stored states named %q",
				stored.OwnerPath, stored.Name))
		}
		names.Add(stored.Name)

		if !isPlainData(stored.Content) {
			res.errors = append(res.errors, fmt.Sprintf(
				"stored state %q content must contain only simple types",
				stored.HandlePath()))
		}
	}
	return res
}

// isPlainData reports whether value is composed only of the types the
// framework can serialize: strings, booleans, numbers, nil, byte
// slices, and slices or string-keyed maps of those.
func isPlainData(value interface{}) bool {
	if value == nil {
		return true
	}
	if _, ok := value.([]byte); ok {
		return true
	}
	v := reflect.ValueOf(value)
	switch v.Kind() {
	case reflect.String, reflect.Bool,
		reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64,
		reflect.Float32, reflect.Float64:
		return true
	case reflect.Slice, reflect.Array:
		for i := 0; i < v.Len(); i++ {
			if !isPlainData(v.Index(i).Interface()) {
				return false
			}
		}
		return true
	case reflect.Map:
		if v.Type().Key().Kind() != reflect.String {
			return false
		}
		iter := v.MapRange()
		for iter.Next() {
			if !isPlainData(iter.Value().Interface()) {
				return false
			}
		}
		return true
	}
	return false
}
