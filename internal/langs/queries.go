// Copyright 2025 KrakLabs
//
// SPDX-License-Identifier: AGPL-3.0-or-later

package langs

// Every query below is written against the fixed capture-name vocabulary
// the extractor (internal/extractor) understands:
//
//	definitions:  @definition.function  @definition.method
//	              @definition.class     @definition.struct
//	              @definition.enum      @definition.trait
//	              @definition.impl      @definition.module
//	              @definition.macro     @definition.variable
//	              @definition.constant  @definition.table
//	              @definition.view      @definition.procedure
//	              @definition.trigger   @definition.index
//	references:   @reference.call            @reference.constructor
//	              @reference.generic_type     @reference.annotation
//	              @reference.field_access     @reference.method
//
// Each definition pattern also captures @name on the identifier node so
// the extractor can read the entity's name without re-walking the tree.
// A language that has no grammar concept for a given entity kind simply
// omits that pattern; the extractor treats an empty capture set as "no
// entities of that kind in this language", not an error.

const goEntitiesQuery = `
(function_declaration name: (identifier) @name) @definition.function
(method_declaration name: (field_identifier) @name) @definition.method
(type_spec name: (type_identifier) @name type: (struct_type)) @definition.struct
(type_spec name: (type_identifier) @name type: (interface_type)) @definition.trait
(const_spec name: (identifier) @name) @definition.constant
(var_spec name: (identifier) @name) @definition.variable
`

const goDependenciesQuery = `
(call_expression function: (identifier) @reference.call)
(call_expression function: (selector_expression field: (field_identifier) @reference.call))
(selector_expression field: (field_identifier) @reference.field_access)
(generic_type type_arguments: (type_argument_list (type_identifier) @reference.generic_type))
`

const pythonEntitiesQuery = `
(function_definition name: (identifier) @name) @definition.function
(class_definition name: (identifier) @name) @definition.class
(decorated_definition definition: (function_definition name: (identifier) @name)) @definition.method
(assignment left: (identifier) @name) @definition.variable
`

const pythonDependenciesQuery = `
(call function: (identifier) @reference.call)
(call function: (attribute attribute: (identifier) @reference.method))
(decorator (identifier) @reference.annotation)
(decorator (call function: (identifier) @reference.annotation))
(attribute attribute: (identifier) @reference.field_access)
`

const javascriptEntitiesQuery = `
(function_declaration name: (identifier) @name) @definition.function
(class_declaration name: (identifier) @name) @definition.class
(method_definition name: (property_identifier) @name) @definition.method
(variable_declarator name: (identifier) @name value: (arrow_function)) @definition.function
(variable_declarator name: (identifier) @name value: (function_expression)) @definition.function
`

const javascriptDependenciesQuery = `
(call_expression function: (identifier) @reference.call)
(call_expression function: (member_expression property: (property_identifier) @reference.method))
(new_expression constructor: (identifier) @reference.constructor)
(member_expression property: (property_identifier) @reference.field_access)
`

const typescriptEntitiesQuery = javascriptEntitiesQuery + `
(interface_declaration name: (type_identifier) @name) @definition.trait
(enum_declaration name: (identifier) @name) @definition.enum
(module_declaration name: (identifier) @name) @definition.module
`

const typescriptDependenciesQuery = javascriptDependenciesQuery + `
(type_arguments (type_identifier) @reference.generic_type)
(decorator (identifier) @reference.annotation)
(decorator (call_expression function: (identifier) @reference.annotation))
`

const javaEntitiesQuery = `
(class_declaration name: (identifier) @name) @definition.class
(interface_declaration name: (identifier) @name) @definition.trait
(enum_declaration name: (identifier) @name) @definition.enum
(method_declaration name: (identifier) @name) @definition.method
(field_declaration declarator: (variable_declarator name: (identifier) @name)) @definition.variable
`

const javaDependenciesQuery = `
(method_invocation name: (identifier) @reference.call)
(object_creation_expression type: (type_identifier) @reference.constructor)
(field_access field: (identifier) @reference.field_access)
(annotation name: (identifier) @reference.annotation)
(marker_annotation name: (identifier) @reference.annotation)
(type_arguments (type_identifier) @reference.generic_type)
`

const rustEntitiesQuery = `
(function_item name: (identifier) @name) @definition.function
(struct_item name: (type_identifier) @name) @definition.struct
(enum_item name: (type_identifier) @name) @definition.enum
(trait_item name: (type_identifier) @name) @definition.trait
(impl_item type: (type_identifier) @name) @definition.impl
(mod_item name: (identifier) @name) @definition.module
(macro_definition name: (identifier) @name) @definition.macro
(const_item name: (identifier) @name) @definition.constant
(static_item name: (identifier) @name) @definition.variable
`

const rustDependenciesQuery = `
(call_expression function: (identifier) @reference.call)
(call_expression function: (field_expression field: (field_identifier) @reference.method))
(macro_invocation macro: (identifier) @reference.call)
(field_expression field: (field_identifier) @reference.field_access)
(generic_type type_arguments: (type_arguments (type_identifier) @reference.generic_type))
(attribute_item (identifier) @reference.annotation)
`

const cEntitiesQuery = `
(function_definition declarator: (function_declarator declarator: (identifier) @name)) @definition.function
(struct_specifier name: (type_identifier) @name) @definition.struct
(enum_specifier name: (type_identifier) @name) @definition.enum
`

const cDependenciesQuery = `
(call_expression function: (identifier) @reference.call)
(field_expression field: (field_identifier) @reference.field_access)
`

const cppEntitiesQuery = cEntitiesQuery + `
(class_specifier name: (type_identifier) @name) @definition.class
(namespace_definition name: (identifier) @name) @definition.module
(template_declaration (function_definition declarator: (function_declarator declarator: (identifier) @name))) @definition.function
`

const cppDependenciesQuery = cDependenciesQuery + `
(new_expression type: (type_identifier) @reference.constructor)
(template_argument_list (type_descriptor type: (type_identifier) @reference.generic_type))
`

const csharpEntitiesQuery = `
(class_declaration name: (identifier) @name) @definition.class
(interface_declaration name: (identifier) @name) @definition.trait
(struct_declaration name: (identifier) @name) @definition.struct
(enum_declaration name: (identifier) @name) @definition.enum
(method_declaration name: (identifier) @name) @definition.method
`

const csharpDependenciesQuery = `
(invocation_expression function: (identifier) @reference.call)
(invocation_expression function: (member_access_expression name: (identifier) @reference.method))
(object_creation_expression type: (identifier) @reference.constructor)
(member_access_expression name: (identifier) @reference.field_access)
(attribute name: (identifier) @reference.annotation)
(generic_name (type_argument_list (identifier) @reference.generic_type))
`

const phpEntitiesQuery = `
(function_definition name: (name) @name) @definition.function
(class_declaration name: (name) @name) @definition.class
(interface_declaration name: (name) @name) @definition.trait
(method_declaration name: (name) @name) @definition.method
`

const phpDependenciesQuery = `
(function_call_expression function: (name) @reference.call)
(member_call_expression name: (name) @reference.method)
(object_creation_expression (qualified_name) @reference.constructor)
(member_access_expression name: (name) @reference.field_access)
(attribute (name) @reference.annotation)
`

const rubyEntitiesQuery = `
(method name: (identifier) @name) @definition.method
(singleton_method name: (identifier) @name) @definition.method
(class name: (constant) @name) @definition.class
(module name: (constant) @name) @definition.module
`

const rubyDependenciesQuery = `
(call method: (identifier) @reference.call)
(call receiver: (_) method: (identifier) @reference.method)
`

const swiftEntitiesQuery = `
(function_declaration name: (simple_identifier) @name) @definition.function
(class_declaration name: (type_identifier) @name) @definition.class
(protocol_declaration name: (type_identifier) @name) @definition.trait
`

const swiftDependenciesQuery = `
(call_expression (simple_identifier) @reference.call)
(navigation_expression suffix: (navigation_suffix (simple_identifier) @reference.field_access))
`

const sqlEntitiesQuery = `
(create_table (identifier) @name) @definition.table
(create_view (identifier) @name) @definition.view
(create_function (identifier) @name) @definition.procedure
(create_trigger (identifier) @name) @definition.trigger
(create_index (identifier) @name) @definition.index
`

const sqlDependenciesQuery = `
(invocation (object_reference (identifier) @reference.call))
(relation (object_reference (identifier) @reference.field_access))
`
