// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package mapper loads SQL mapper documents and builds their
// statements with every include expanded.
//
// A mapper document has a single <mapper namespace="..."> root whose
// <sql id="..."> children are reusable fragments and whose <select>,
// <insert>, <update> and <delete> children are statements:
//
//	<mapper namespace="app.UserMapper">
//	  <sql id="columns">id, name</sql>
//	  <select id="findAll">SELECT <include refid="columns"/> FROM user</select>
//	</mapper>
//
// Fragment and statement ids are qualified with the namespace
// ("app.UserMapper.columns"). Include references resolve relative to
// the namespace of the mapper that contains them; a dotted refid names
// a fragment in another mapper.
//
// [Builder] accepts mappers in any order. A statement that includes a
// fragment from a mapper that has not been added yet is deferred
// rather than rejected; [Builder.Build] retries deferred statements
// until every one is complete or no further progress is possible.
//
// When a database id is configured, a fragment or statement declared
// for that database takes precedence over a database-independent one
// with the same id, and elements declared for other databases are
// ignored. Without a database id only database-independent elements
// are used.
package mapper
