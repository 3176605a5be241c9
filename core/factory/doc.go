// Package factory provides the generic registry behind config-selected
// modules such as metrics sinks and history archives. A module is named by
// a type string plus a map of raw settings; its factory decodes the settings
// and returns the concrete implementation.
//
//	reg := factory.NewRegistry[history.Store]()
//	reg.Register("sqlite", func(conf map[string]any) (history.Store, error) {
//	    var c struct {
//	        Path string `json:"path"`
//	    }
//	    if err := factory.Decode(conf, &c); err != nil {
//	        return nil, err
//	    }
//	    return NewSQLiteStore(c.Path)
//	})
//	store, err := reg.Create(factory.ModuleConfig{Type: "sqlite", Conf: conf})
package factory
