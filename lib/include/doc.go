// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package include expands <include refid="..."/> directives in place.
//
// An include element names a reusable fragment by its refid and may
// declare variables for it:
//
//	<include refid="columns">
//	  <property name="alias" value="u"/>
//	</include>
//
// [Expander.Expand] walks a tree depth first. Each include is resolved
// to a private copy of its fragment, the copy is expanded recursively
// with the include's variables overlaid on the inherited scope, and the
// copy's children replace the include element in its parent. The
// fragment wrapper itself never appears in the output.
//
// Variable substitution applies only to content that came from a
// fragment: attribute values and text of included nodes are
// interpolated against the scope in effect for that include. The
// caller's own document content is never rewritten. Declared values
// are interpolated against the inherited scope, never against sibling
// declarations, and a declaration shadows an inherited variable of the
// same name for the fragment only.
//
// Fragments from another document are imported into the document that
// contains the include, so the result is owned by a single document.
//
// A fragment that includes itself with an unchanged scope can never
// terminate and is reported as [ErrCyclicInclude] with the include
// chain. Recursion whose scope changes on every level is bounded by
// [Config.MaxDepth].
package include
