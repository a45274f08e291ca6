package resource

import (
	"time"

	"github.com/deppfellow/rentals-api/internal/store"
)

// Registry is the ordered set of resources the API serves.
type Registry struct {
	defs   []*Definition
	byPath map[string]*Definition
}

func NewRegistry(defs ...*Definition) *Registry {
	r := &Registry{
		defs:   defs,
		byPath: make(map[string]*Definition, len(defs)),
	}
	for _, d := range defs {
		r.byPath[d.Path] = d
	}
	return r
}

// All returns the definitions in registration order.
func (r *Registry) All() []*Definition {
	return r.defs
}

func (r *Registry) Lookup(path string) (*Definition, bool) {
	d, ok := r.byPath[path]
	return d, ok
}

func required(names ...string) []Field {
	fields := make([]Field, len(names))
	for i, n := range names {
		fields[i] = Field{Name: n}
	}
	return fields
}

func ref(id, nombre string) map[string]interface{} {
	return map[string]interface{}{"id": id, "nombre": nombre}
}

func registrationDate(now time.Time) interface{} {
	return now.UTC().Format(time.RFC3339)
}

var (
	Usuarios = &Definition{
		Name:     "usuario",
		Path:     "usuarios",
		Required: required("nombre", "correo", "rol"),
		Defaults: []FieldDefault{{Field: "fechaRegistro", Value: registrationDate}},
		Example:  store.Fields{"nombre": "Ana", "correo": "ana@x.com", "rol": "admin"},
	}

	Maquinas = &Definition{
		Name:     "máquina",
		Gender:   Feminine,
		Path:     "maquinas",
		Required: required("nombre", "descripcion", "precio", "distribuidor"),
		Example: store.Fields{
			"nombre":       "Excavadora",
			"descripcion":  "Excavadora hidráulica 20t",
			"precio":       1500.0,
			"distribuidor": ref("d1", "Maquinaria Sur"),
		},
	}

	Alquileres = &Definition{
		Name:     "alquiler",
		Path:     "alquileres",
		Required: required("usuario", "maquina", "fechaInicio", "fechaFin", "estado"),
		Example: store.Fields{
			"usuario":     ref("u1", "Ana"),
			"maquina":     ref("m1", "Excavadora"),
			"fechaInicio": "2024-05-01T00:00:00Z",
			"fechaFin":    "2024-05-10T00:00:00Z",
			"estado":      "activo",
		},
	}

	Pagos = &Definition{
		Name:     "pago",
		Path:     "pagos",
		Required: required("alquiler", "monto", "fecha", "metodoPago"),
		Example: store.Fields{
			"alquiler":   map[string]interface{}{"id": "a1"},
			"monto":      150.0,
			"fecha":      "2024-05-01T00:00:00Z",
			"metodoPago": "tarjeta",
		},
	}

	Distribuidores = &Definition{
		Name:     "distribuidor",
		Path:     "distribuidores",
		Required: required("nombre", "correo", "telefono", "direccion"),
		Example: store.Fields{
			"nombre":    "Maquinaria Sur",
			"correo":    "ventas@sur.com",
			"telefono":  "+34 600 000 000",
			"direccion": "Calle Mayor 1",
		},
	}

	Resenas = &Definition{
		Name:   "reseña",
		Gender: Feminine,
		Path:   "resenas",
		Required: []Field{
			{Name: "usuario"},
			{Name: "producto"},
			{Name: "calificacion"},
			{Name: "comentario", AllowEmpty: true},
		},
		Rules: []Rule{{
			Field:   "calificacion",
			Tag:     "gte=1,lte=5",
			Numeric: true,
			Message: "La calificación debe estar entre 1 y 5",
		}},
		Example: store.Fields{
			"usuario":      ref("u1", "Ana"),
			"producto":     ref("m1", "Excavadora"),
			"calificacion": 5.0,
			"comentario":   "",
		},
	}

	Categorias = &Definition{
		Name:     "categoría",
		Gender:   Feminine,
		Path:     "categorias",
		Required: required("nombre", "descripcion"),
		Example:  store.Fields{"nombre": "Excavación", "descripcion": "Maquinaria de movimiento de tierras"},
	}

	Ubicaciones = &Definition{
		Name:     "ubicación",
		Gender:   Feminine,
		Path:     "ubicaciones",
		Required: required("nombre", "direccion", "latitud", "longitud"),
		Example: store.Fields{
			"nombre":    "Almacén central",
			"direccion": "Polígono 3",
			"latitud":   51.4779,
			"longitud":  0.0,
		},
	}

	Soporte = &Definition{
		Name:     "ticket de soporte",
		Path:     "soporte",
		Required: required("usuario", "descripcion", "fecha", "estado"),
		Example: store.Fields{
			"usuario":     ref("u1", "Ana"),
			"descripcion": "La máquina no arranca",
			"fecha":       "2024-05-02T09:00:00Z",
			"estado":      "abierto",
		},
	}

	Trabajadores = &Definition{
		Name:     "trabajador",
		Path:     "trabajadores",
		Required: required("nombre", "puesto", "salario", "fechaContratacion"),
		Example: store.Fields{
			"nombre":            "Luis",
			"puesto":            "Operario",
			"salario":           1800.0,
			"fechaContratacion": "2023-01-15",
		},
	}
)

// Default returns the registry of every collection the API serves.
func Default() *Registry {
	return NewRegistry(
		Usuarios,
		Maquinas,
		Alquileres,
		Pagos,
		Distribuidores,
		Resenas,
		Categorias,
		Ubicaciones,
		Soporte,
		Trabajadores,
	)
}
